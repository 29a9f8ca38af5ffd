package service

import (
	"fmt"
	"strings"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/model"
)

// Curated text signals for dark (faceless) channel detection. Strong terms
// are unambiguous on their own; weak terms only add up.
var (
	strongDarkTerms = []string{
		"faceless",
		"no face",
		"ai voice",
		"text to speech",
		"stock footage",
	}

	weakDarkTerms = []string{
		"narration",
		"narrated",
		"compilation",
		"top 10",
		"top ten",
		"slideshow",
		"relaxing music",
		"ambient",
		"lofi",
		"facts you",
		"reddit stories",
		"whiteboard",
		"motivational quotes",
		"asmr no talking",
	}

	strongCounterTerms = []string{
		"vlog",
		"face reveal",
		"facecam",
		"face to camera",
		"interview",
	}

	weakCounterTerms = []string{
		"reaction",
		"unboxing",
		"grwm",
		"day in my life",
		"my morning routine",
		"q&a",
		"storytime",
	}
)

// KeywordVerdict is the heuristic's guess plus how sure it is. Only a
// high-certainty verdict may terminate the classification cascade; the
// heuristic is a cost-avoidance filter, not a final answer.
type KeywordVerdict struct {
	IsDark     bool
	Certainty  string // model.CertaintyHigh or model.CertaintyLow
	Confidence int    // 0-100
	Matched    []string
	Reason     string
}

// KeywordService classifies from text signals alone. It is deterministic,
// costs nothing, and never performs I/O.
type KeywordService struct{}

func NewKeywordService() *KeywordService {
	return &KeywordService{}
}

// Evaluate scans title, channel name, and description against the curated
// term lists and produces a verdict with a certainty level.
func (s *KeywordService) Evaluate(req model.ClassificationRequest) KeywordVerdict {
	text := strings.ToLower(req.Title + " " + req.ChannelName + " " + req.Description)

	var matched []string
	strongDark := countMatches(text, strongDarkTerms, &matched)
	weakDark := countMatches(text, weakDarkTerms, &matched)
	strongCounter := countMatches(text, strongCounterTerms, &matched)
	weakCounter := countMatches(text, weakCounterTerms, &matched)

	darkScore := strongDark*3 + weakDark
	counterScore := strongCounter*3 + weakCounter
	net := darkScore - counterScore

	v := KeywordVerdict{
		IsDark:    net > 0,
		Certainty: model.CertaintyLow,
		Matched:   matched,
	}

	switch {
	case strongDark > 0 && strongCounter == 0:
		v.IsDark = true
		v.Certainty = model.CertaintyHigh
		v.Confidence = 90
	case strongCounter > 0 && strongDark == 0:
		v.IsDark = false
		v.Certainty = model.CertaintyHigh
		v.Confidence = 90
	case net >= 2 && counterScore == 0:
		v.IsDark = true
		v.Certainty = model.CertaintyHigh
		v.Confidence = 75
	case net <= -2 && darkScore == 0:
		v.IsDark = false
		v.Certainty = model.CertaintyHigh
		v.Confidence = 75
	default:
		// Mixed or thin signal: keep the guess but force escalation.
		v.Confidence = 40
		if len(matched) == 0 {
			v.Confidence = 0
		}
	}

	if len(matched) > 0 {
		v.Reason = fmt.Sprintf("keyword signals: %s", strings.Join(matched, ", "))
	} else {
		v.Reason = "no keyword signals matched"
	}

	return v
}

func countMatches(text string, terms []string, matched *[]string) int {
	n := 0
	for _, term := range terms {
		if strings.Contains(text, term) {
			n++
			*matched = append(*matched, term)
		}
	}
	return n
}
