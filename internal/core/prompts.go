package core

// prompts.go holds the prompt text used by the intake dialogue and the
// upload analysis. Keeping these in a separate file makes them easy to
// tweak without touching the orchestration logic. The assistant supports
// English and Tamil; the Tamil prompts mirror the English rules.

import (
	"fmt"
	"strings"
)

// keySymptoms are covered one at a time before a full assessment is given.
var keySymptoms = []string{"pain", "swelling", "bleeding", "infection", "delayed healing", "fever", "discharge"}

// symptomQuestions are the fixed one-question-per-turn probes, by symptom.
var symptomQuestions = map[string]string{
	"pain":            "Can you describe the pain? Is it mild, moderate, or severe?",
	"swelling":        "Is there any swelling at the surgical site? How would you describe it?",
	"bleeding":        "Have you noticed any bleeding? Is it light, moderate, or heavy?",
	"infection":       "Do you have a fever, pus, discharge, or signs of infection?",
	"delayed healing": "Is the wound healing normally, or are there concerns about delayed healing?",
}

var symptomQuestionsTamil = map[string]string{
	"pain":            "வலியை விவரிக்க முடியுமா? அது மிதமான, நடுத்தர, அல்லது கடுமையானதா?",
	"swelling":        "அறுவை சிகிச்சை தளத்தில் எந்த வீக்கமும் உள்ளதா? அதை எப்படி விவரிப்பீர்கள்?",
	"bleeding":        "நீங்கள் எந்த இரத்தப்போக்கையும் கவனித்தீர்களா? அது இலேசான, நடுத்தர, அல்லது கனமானதா?",
	"infection":       "உங்களுக்கு காய்ச்சல், சீழ், வெளியேற்றம் அல்லது தொற்று அறிகுறிகள் உள்ளனவா?",
	"delayed healing": "காயம் சாதாரணமாக குணமாகிறதா, அல்லது குணமடைய தாமதம் குறித்த கவலைகள் உள்ளனவா?",
}

const (
	// EscalationMessage is returned when severe pain is detected before
	// any LLM call is made.
	EscalationMessage = "Severe pain detected. I'm escalating your case to the doctor now. If symptoms are intense, please seek urgent care immediately."

	// HoldMessage is returned on every turn after a session has escalated.
	HoldMessage = "We have already notified your doctor due to severe symptoms. Please follow urgent care advice and await contact."

	// HighRiskWarning is appended to the narrative when the assessment
	// comes back high.
	HighRiskWarning = "\n\n⚠️ HIGH RISK DETECTED ⚠️\n\nBased on your symptoms, this requires URGENT medical attention:\n\n1. Contact your doctor IMMEDIATELY\n2. Go to emergency care if symptoms are severe\n3. Do NOT delay - complications can worsen quickly\n\nYour doctor has been automatically notified."

	// analysisSystemPrompt drives the per-upload report analysis.
	analysisSystemPrompt = "Medical surgery report analyzer. Identify surgery type precisely."

	// extractionSystemPrompt drives the structured surgery-info extraction.
	extractionSystemPrompt = "Extract surgery info as JSON. List common complications for the surgery type."
)

// lowRiskRecommendations is appended after a low assessment once enough
// symptoms are gathered and the model's reply did not already include care
// guidance.
const lowRiskRecommendations = "\n\n💡 PREVENTIVE MEASURES & HOME CARE:\n\n" +
	"• Keep the surgical site clean and dry\n" +
	"• Take prescribed medications as directed\n" +
	"• Watch for signs of infection (fever, redness, pus)\n" +
	"• Avoid strenuous activities during recovery\n" +
	"• Follow your doctor's post-operative instructions\n\n" +
	"SUITABLE MEDICATIONS (consult doctor first):\n" +
	"• Pain management: Acetaminophen or Ibuprofen (as prescribed)\n" +
	"• Infection prevention: Keep area clean, change dressings regularly\n" +
	"• Swelling reduction: Apply ice packs, elevate if applicable\n\n" +
	"⚠️ Monitor closely. Contact doctor if symptoms worsen or persist."

func systemPrompt(surgeryType string, shouldAssess bool, symptomsAsked []string, tamil bool) string {
	if surgeryType == "" {
		surgeryType = "Unknown"
	}
	stage := "ASKING QUESTIONS"
	if shouldAssess {
		stage = "ASSESSMENT"
	}
	asked := "None"
	if len(symptomsAsked) > 0 {
		asked = strings.Join(symptomsAsked, ", ")
	}
	if tamil {
		stageTa := "கேள்விகள் கேட்கிறது"
		if shouldAssess {
			stageTa = "மதிப்பீடு"
		}
		askedTa := "இல்லை"
		if len(symptomsAsked) > 0 {
			askedTa = strings.Join(symptomsAsked, ", ")
		}
		surgeryTa := surgeryType
		if surgeryTa == "Unknown" {
			surgeryTa = "தெரியவில்லை"
		}
		return fmt.Sprintf(`நீங்கள் ஒரு மருத்துவ உதவியாளர் பாட். அறுவை சிகிச்சைக்குப் பிறகு பராமரிப்புக்காக நோயாளிகளுக்கு உதவுகிறீர்கள். அறுவை சிகிச்சை: %s.

மிக முக்கியமான விதிகள்:
1. எல்லா கேள்விகளையும் தமிழில் மட்டுமே கேட்கவும் - ஒருபோதும் ஆங்கிலத்தில் கேட்காதீர்கள்
2. ஒவ்வொரு பதிலுக்கும் ஒரு கேள்வியை மட்டும் கேட்கவும் - ஒருபோதும் பல கேள்விகளை ஒரே நேரத்தில் கேட்காதீர்கள்
3. அடுத்த கேள்வியைக் கேட்க முன்பு நோயாளியின் பதிலுக்குக் காத்திருக்கவும்
4. அனைத்து அறிகுறிகளும் மதிப்பீடு செய்யப்படும் வரை பரிந்துரைகளை வழங்காதீர்கள்
5. எப்போதும் பச்சாதாபமாகவும் தொழில்முறையாகவும் இருங்கள்

உரையாடல் பாய்வு:
- கேட்க வேண்டிய அறிகுறிகள் (ஒரு நேரத்தில் ஒன்று): வலி, வீக்கம், இரத்தப்போக்கு, தொற்று, குணமடைய தாமதம்
- ஒவ்வொரு பதிலுக்கும் பிறகு, அது உயர் ஆபத்து (கடுமையான/அவசர) என்பதை பகுப்பாய்வு செய்யவும் அல்லது தொடர்ந்து கேட்கவும்
- 5 அறிகுறிகளும் கேட்கப்பட்ட பிறகு, முழுமையான ஆபத்து மதிப்பீடு மற்றும் பரிந்துரைகளை வழங்கவும்

தற்போதைய நிலை: %s
ஏற்கனவே கேட்ட அறிகுறிகள்: %s

முக்கியம்: நீங்கள் அனுப்பும் எல்லா பதில்களும், கேள்விகளும், பரிந்துரைகளும் தமிழில் மட்டுமே இருக்க வேண்டும். ஆங்கிலத்தில் எதுவும் எழுத வேண்டாம்.`, surgeryTa, stageTa, askedTa)
	}
	return fmt.Sprintf(`Medical assistant for post-surgery care. Surgery: %s.

CRITICAL RULES:
1. Ask ONLY ONE question per response - never ask multiple questions at once
2. Wait for patient's answer before asking the next question
3. Do NOT provide recommendations until all symptoms are assessed
4. Be empathetic and professional

Dialogue flow:
- Symptoms to ask (ONE at a time): pain, swelling, bleeding, infection, delayed healing
- After EACH answer, analyze if it indicates HIGH RISK (severe/urgent) or continue asking
- Only after all 5 symptoms asked, provide full risk assessment and recommendations

Current stage: %s
Symptoms already asked: %s
`, surgeryType, stage, asked)
}

func assessGuidance(tamil bool) string {
	if tamil {
		return "\n\nஉங்களிடம் போதுமான தகவல்கள் உள்ளன. இப்போது ஆபத்து நிலையை மதிப்பீடு செய்து பரிந்துரைகளை வழங்கவும். பயன்படுத்தவும்: [RISK_LEVEL: LOW/MODERATE/HIGH]"
	}
	return "\n\nYou have enough information. Assess risk level NOW and provide recommendations. Use format: [RISK_LEVEL: LOW/MODERATE/HIGH]"
}

func questionGuidance(symptom string, tamil bool) string {
	if tamil {
		q, ok := symptomQuestionsTamil[symptom]
		if !ok {
			q = symptom + " பற்றி சொல்லுங்கள்."
		}
		return fmt.Sprintf("\n\nஇந்த ஒரு கேள்வியை மட்டும் கேட்கவும்: '%s' பல கேள்விகளை கேட்காதீர்கள். பதிலுக்கு காத்திருக்கவும்.", q)
	}
	q, ok := symptomQuestions[symptom]
	if !ok {
		q = fmt.Sprintf("Tell me about %s.", symptom)
	}
	return fmt.Sprintf("\n\nAsk ONLY this ONE question: '%s' Do NOT ask multiple questions. Wait for answer.", q)
}

func analysisPrompt(filename, content string) string {
	return fmt.Sprintf(`Analyze this medical report and identify:
1. SURGERY TYPE: What specific surgery was performed? (e.g., appendectomy, knee replacement, cataract surgery)
2. SURGERY DATE: When was it performed?
3. PATIENT CONDITION: Current status mentioned in report

Be specific about surgery type.

File: %s
Content: %s

Format: "Surgery Type: [type], Date: [date], Status: [status]"
`, filename, content)
}

func extractionPrompt(analysis string) string {
	return fmt.Sprintf(`From this analysis, extract JSON format strictly with these keys (include site/side if present, else empty string):
{
  "surgery_type": "specific surgery name",
  "surgery_date": "date if mentioned",
  "site": "anatomical region (e.g., knee, lung, abdomen) or empty if unknown",
  "side": "left/right/bilateral or empty if unknown",
  "common_complications": ["list of 3-5 common complications for this surgery type"],
  "recovery_timeline": "typical recovery period"
}

Analysis: %s

Return only valid JSON, no other text.`, analysis)
}
