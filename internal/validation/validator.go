// Package validation decides whether a generated recipe is good enough to
// keep, based on its quality metadata and where the content came from.
package validation

import "bonchef/internal/domain"

// WarningLimitedContext is set on verdicts that pass with weak context.
const WarningLimitedContext = "limited_context"

// LimitedContextMessage is shown when a text import passes with weak context.
const LimitedContextMessage = "Beperkte context gevonden, we maken het recept met de beschikbare informatie."

// Verdict is the outcome of Validate.
type Verdict struct {
	IsError bool   `json:"isError"`
	Message string `json:"message,omitempty"`
	Warning string `json:"warning,omitempty"`
}

var notFoodMessages = map[domain.SourceType]string{
	domain.SourceImage:         "Deze afbeelding lijkt geen recept te bevatten",
	domain.SourceURL:           "Deze pagina lijkt geen recept te bevatten",
	domain.SourceText:          "Deze tekst lijkt geen recept te bevatten",
	domain.SourceVerticalVideo: "Deze video lijkt geen recept te bevatten",
	domain.SourceDishcovery:    "Deze foto lijkt geen gerecht te bevatten",
}

var noContextMessages = map[domain.SourceType]string{
	domain.SourceImage:         "De afbeelding bevat te weinig informatie om een recept te maken",
	domain.SourceURL:           "De pagina bevat te weinig informatie om een recept te maken",
	domain.SourceText:          "De tekst bevat te weinig informatie om een recept te maken",
	domain.SourceVerticalVideo: "De video bevat te weinig informatie om een recept te maken",
	domain.SourceDishcovery:    "Voeg een beschrijving of spraakopname toe zodat we het recept kunnen maken",
}

const (
	fallbackNotFood   = "De inhoud lijkt geen recept te bevatten"
	fallbackNoContext = "De inhoud bevat te weinig informatie om een recept te maken"
)

// Validate applies the acceptance policy. Rules are evaluated in order and
// the first match wins: text with food but weak context passes with a
// notice, missing food is rejected, missing context is rejected, anything
// else passes silently.
func Validate(meta domain.RecipeGenerationMetadata, sourceType domain.SourceType) Verdict {
	switch {
	case sourceType == domain.SourceText && meta.ContainsFood && !meta.EnoughContext:
		return Verdict{Message: LimitedContextMessage, Warning: WarningLimitedContext}
	case !meta.ContainsFood:
		return Verdict{IsError: true, Message: messageFor(notFoodMessages, sourceType, fallbackNotFood)}
	case !meta.EnoughContext:
		return Verdict{IsError: true, Message: messageFor(noContextMessages, sourceType, fallbackNoContext)}
	default:
		return Verdict{}
	}
}

func messageFor(table map[domain.SourceType]string, sourceType domain.SourceType, fallback string) string {
	if msg, ok := table[sourceType]; ok {
		return msg
	}
	return fallback
}
