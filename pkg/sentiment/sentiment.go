// Package sentiment scores free-form text mentioning a tracked asset.
//
// The scorer is a pure function: the same input always yields the same
// polarity in [-1, 1] and a label derived strictly from the score's sign.
// It never returns an error; anything it cannot make sense of scores 0.
package sentiment

import (
	"strings"
	"unicode"
)

// Label classifies a polarity score by its sign.
type Label string

const (
	Positive Label = "Positive"
	Negative Label = "Negative"
	Neutral  Label = "Neutral"
)

// negationWindow is how many tokens a negation word reaches forward.
const negationWindow = 3

// Score returns the polarity of text in [-1, 1] and the matching label.
//
// Polarity is the mean weight of the sentiment-bearing tokens found, with
// negation words ("not", "never", ...) flipping the sign of weights within
// the following few tokens. Text with no sentiment-bearing tokens scores 0.
func Score(text string) (float64, Label) {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0, Neutral
	}

	var total float64
	var hits int
	negateUntil := -1
	for i, tok := range tokens {
		if _, ok := negations[tok]; ok {
			negateUntil = i + negationWindow
			continue
		}
		w, ok := lexicon[tok]
		if !ok {
			continue
		}
		if i <= negateUntil {
			w = -w
		}
		total += w
		hits++
	}
	if hits == 0 {
		return 0, Neutral
	}

	score := clamp(total/float64(hits), -1, 1)
	return score, LabelFor(score)
}

// LabelFor maps a score onto its label by sign.
func LabelFor(score float64) Label {
	switch {
	case score > 0:
		return Positive
	case score < 0:
		return Negative
	default:
		return Neutral
	}
}

// tokenize lowercases and splits on anything that is not a letter, digit or
// an in-word hyphen, so "sell-off" survives as one token.
func tokenize(text string) []string {
	lowered := strings.ToLower(text)
	return strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var negations = map[string]struct{}{
	"not":     {},
	"no":      {},
	"never":   {},
	"nothing": {},
	"neither": {},
	"nor":     {},
	"cannot":  {},
	"without": {},
	"isnt":    {},
	"wont":    {},
	"doesnt":  {},
	"didnt":   {},
}

// lexicon carries polarity weights for the vocabulary that shows up in
// crypto news and community chatter. Weights are on the TextBlob-style
// [-1, 1] scale.
var lexicon = map[string]float64{
	// gains and optimism
	"surge": 0.8, "surges": 0.8, "surged": 0.8, "surging": 0.8,
	"rally": 0.7, "rallies": 0.7, "rallied": 0.7, "rallying": 0.7,
	"soar": 0.8, "soars": 0.8, "soared": 0.8, "soaring": 0.8,
	"gain": 0.5, "gains": 0.5, "gained": 0.5, "gaining": 0.5,
	"climb": 0.5, "climbs": 0.5, "climbed": 0.5, "climbing": 0.5,
	"jump": 0.5, "jumps": 0.5, "jumped": 0.5,
	"rise": 0.4, "rises": 0.4, "rose": 0.4, "rising": 0.4,
	"record": 0.3, "breakout": 0.6, "outperform": 0.6, "outperforms": 0.6,
	"bull": 0.6, "bullish": 0.7, "moon": 0.6, "mooning": 0.6,
	"adoption": 0.4, "approval": 0.5, "approved": 0.5, "partnership": 0.4,
	"win": 0.5, "wins": 0.5, "winning": 0.5, "winner": 0.5,
	"strong": 0.4, "strength": 0.4, "boom": 0.6, "booming": 0.6,
	"profit": 0.5, "profits": 0.5, "profitable": 0.5,
	"optimism": 0.5, "optimistic": 0.5, "upbeat": 0.5, "upside": 0.4,
	"good": 0.4, "great": 0.6, "excellent": 0.8, "positive": 0.5,
	"growth": 0.4, "grows": 0.4, "growing": 0.4, "recover": 0.4,
	"recovers": 0.4, "recovery": 0.4, "rebound": 0.5, "rebounds": 0.5,
	"milestone": 0.4, "success": 0.6, "successful": 0.6,
	"buy": 0.3, "buying": 0.3, "accumulate": 0.3, "accumulation": 0.3,
	"high": 0.3, "highs": 0.3, "ath": 0.6, "all-time": 0.3,
	"upgrade": 0.4, "upgraded": 0.4, "launch": 0.3, "launches": 0.3,

	// losses and fear
	"crash": -0.8, "crashes": -0.8, "crashed": -0.8, "crashing": -0.8,
	"plunge": -0.8, "plunges": -0.8, "plunged": -0.8, "plunging": -0.8,
	"plummet": -0.8, "plummets": -0.8, "plummeted": -0.8,
	"tumble": -0.6, "tumbles": -0.6, "tumbled": -0.6,
	"slump": -0.6, "slumps": -0.6, "slumped": -0.6,
	"drop": -0.4, "drops": -0.4, "dropped": -0.4, "dropping": -0.4,
	"fall": -0.4, "falls": -0.4, "fell": -0.4, "falling": -0.4,
	"sink": -0.5, "sinks": -0.5, "sank": -0.5, "sinking": -0.5,
	"dip": -0.3, "dips": -0.3, "dipped": -0.3,
	"decline": -0.4, "declines": -0.4, "declined": -0.4, "declining": -0.4,
	"loss": -0.5, "losses": -0.5, "lose": -0.5, "loses": -0.5, "losing": -0.5,
	"bear": -0.6, "bearish": -0.7, "dump": -0.6, "dumps": -0.6,
	"dumped": -0.6, "dumping": -0.6,
	"sell-off": -0.7, "selloff": -0.7, "liquidation": -0.6,
	"liquidations": -0.6, "liquidated": -0.6,
	"hack": -0.8, "hacked": -0.8, "exploit": -0.7, "exploited": -0.7,
	"scam": -0.9, "fraud": -0.9, "ponzi": -0.9, "rug": -0.8, "rugpull": -0.9,
	"ban": -0.6, "banned": -0.6, "lawsuit": -0.6, "sued": -0.6,
	"fear": -0.5, "panic": -0.7, "fud": -0.5, "crisis": -0.7,
	"weak": -0.4, "weakness": -0.4, "bad": -0.4, "terrible": -0.8,
	"negative": -0.5, "bankrupt": -0.9, "bankruptcy": -0.9,
	"insolvent": -0.8, "default": -0.6, "collapse": -0.8, "collapsed": -0.8,
	"warning": -0.4, "warns": -0.4, "risk": -0.3, "risky": -0.4,
	"volatile": -0.3, "volatility": -0.3, "correction": -0.3,
	"low": -0.3, "lows": -0.3, "worst": -0.8, "crackdown": -0.6,
	"delisted": -0.6, "delisting": -0.6, "outage": -0.5, "halted": -0.5,
}
