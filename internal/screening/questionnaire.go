package screening

import "github.com/maggielii/heartwaves/internal/model"

// QuestionnaireFor selects the follow-up question set for the current
// assessment. The lookup is a pure function of (status, hint, BP
// availability); each hint has a fixed set so repeated calls with the same
// inputs serve the same questions.
func QuestionnaireFor(status model.Status, hint model.PhenotypeHint, bpPresent bool) []model.Question {
	if status == model.StatusNormal {
		return NormalQuestionnaire()
	}

	switch hint {
	case model.HintPOTSLike:
		return []model.Question{
			q("orthostatic", "Do symptoms worsen when standing and improve when lying down?", "no", "unsure", "yes"),
			q("tachy_upright", "Do you notice rapid heartbeat shortly after standing?", "no", "unsure", "yes"),
			q("brain_fog", "Any brain fog, fatigue, or reduced concentration on upright days?", "no", "mild", "moderate", "severe"),
			q("heat_trigger", "Do heat, hot showers, or long standing make symptoms worse?", "no", "sometimes", "often"),
			q("hydration", "Do fluids/salt intake noticeably change your symptoms?", "no", "unsure", "yes"),
		}
	case model.HintISTLike:
		return []model.Question{
			q("fast_resting_hr", "Do you notice persistent fast heart rate even while resting?", "no", "sometimes", "often"),
			q("palpitations_rest", "Do palpitations happen while seated or lying down?", "no", "sometimes", "often"),
			q("standing_relation", "Are symptoms mainly triggered by standing (vs present regardless of posture)?", "mostly_posture", "mixed", "regardless_posture"),
			q("stimulants", "Any caffeine/energy drink or stimulant use on high-HR days?", "no", "low", "high"),
			q("med_changes", "Any medication changes in the last 30 days?", "no", "unsure", "yes"),
		}
	case model.HintOHLike:
		return ohQuestionnaire(bpPresent)
	case model.HintVVSLike:
		return vvsQuestionnaire(bpPresent)
	default:
		return []model.Question{
			q("orthostatic", "Do symptoms worsen when standing and improve when lying down?", "no", "unsure", "yes"),
			q("presyncope", "Any near-fainting or fainting episodes in the last 30 days?", "no", "near_faint", "faint"),
			q("tachy", "Do you notice a rapid heart rate upon standing?", "no", "unsure", "yes"),
			q("hydration", "Have you increased fluids/salt recently or been dehydrated?", "no", "unsure", "yes"),
			q("illness", "Any recent illness, fever, or new medication changes?", "no", "unsure", "yes"),
		}
	}
}

// NormalQuestionnaire is the light check-in set served when no follow-up
// pattern is active.
func NormalQuestionnaire() []model.Question {
	return []model.Question{
		q("fatigue", "In the last 30 days, have you had unusual fatigue?", "no", "mild", "moderate", "severe"),
		q("dizziness", "In the last 30 days, have you had dizziness when standing?", "no", "sometimes", "often"),
		q("palpitations", "In the last 30 days, have you had palpitations/rapid heartbeat episodes?", "no", "sometimes", "often"),
	}
}

func ohQuestionnaire(bpPresent bool) []model.Question {
	items := []model.Question{
		q("dizzy_standing", "Do you feel lightheaded within a few minutes of standing?", "no", "sometimes", "often"),
		q("vision_dim", "Do you notice dim vision or weakness when upright?", "no", "sometimes", "often"),
		q("presyncope", "Any near-fainting/fainting episodes in the last 30 days?", "no", "near_faint", "faint"),
		q("recovery_lying", "Do symptoms improve quickly after sitting or lying down?", "no", "unsure", "yes"),
	}
	if bpPresent {
		items = append(items, q("bp_drop", "If measured, does your blood pressure drop after standing?", "no", "unsure", "yes"))
	} else {
		items = append(items, q("bp_not_measured", "Have you measured blood pressure lying and then standing during symptoms?", "not_measured", "once", "multiple_times"))
	}
	return items
}

func vvsQuestionnaire(bpPresent bool) []model.Question {
	items := []model.Question{
		q("trigger_pattern", "Do episodes follow triggers like prolonged standing, heat, pain, or stress?", "no", "sometimes", "often"),
		q("warning_signs", "Before symptoms, do you get nausea, sweating, or tunnel vision?", "no", "sometimes", "often"),
		q("fainting", "Any brief loss of consciousness in the last 30 days?", "no", "once", "multiple"),
		q("position_relief", "Do symptoms improve after lying down?", "no", "unsure", "yes"),
	}
	if bpPresent {
		items = append(items, q("bp_during_event", "If measured during events, does blood pressure drop?", "no", "unsure", "yes"))
	} else {
		items = append(items, q("bp_not_measured", "Would you be able to record seated/standing BP during a future episode?", "no", "maybe", "yes"))
	}
	return items
}

func q(id, prompt string, options ...string) model.Question {
	return model.Question{ID: id, Prompt: prompt, Options: options}
}
