package domain

import (
	"encoding/json"
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Option is one selectable answer with its effects. Missing numeric fields are zero.
type Option struct {
	Key         string  `json:"key"`
	HasKey      bool    `json:"-"`
	Text        string  `json:"text,omitempty"`
	Points      int     `json:"points"`
	DeltaCredit int     `json:"delta_credit"`
	DeltaCash   float64 `json:"delta_cash"`
	DeltaEnergy int     `json:"delta_energy"`
	XP          *int    `json:"xp,omitempty"`
}

// Question is an ordered list of options.
type Question struct {
	Prompt  string   `json:"prompt,omitempty"`
	Options []Option `json:"options"`
}

// ActivityContent is the parsed form of an activity's content_json.
type ActivityContent struct {
	Questions []Question `json:"questions"`
	XPReward  *int       `json:"xp_reward,omitempty"`
}

// ParseContent decodes content_json. Malformed input yields empty content, and
// malformed fields inside otherwise valid JSON are read as absent.
func ParseContent(raw string) ActivityContent {
	var content ActivityContent
	if strings.TrimSpace(raw) == "" {
		return content
	}

	var doc map[string]any
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return content
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return content
	}

	content.XPReward = intPtrValue(doc["xp_reward"])

	questions, _ := doc["questions"].([]any)
	for _, rawQuestion := range questions {
		q, ok := rawQuestion.(map[string]any)
		if !ok {
			// keep indexes aligned with what the student saw
			content.Questions = append(content.Questions, Question{})
			continue
		}
		question := Question{}
		question.Prompt, _ = q["prompt"].(string)
		options, _ := q["options"].([]any)
		for _, rawOption := range options {
			o, ok := rawOption.(map[string]any)
			if !ok {
				continue
			}
			question.Options = append(question.Options, parseOption(o))
		}
		content.Questions = append(content.Questions, question)
	}
	return content
}

func parseOption(o map[string]any) Option {
	opt := Option{}
	if key, ok := o["key"]; ok && key != nil {
		opt.Key = keyString(key)
		opt.HasKey = true
	}
	opt.Text, _ = o["text"].(string)
	opt.Points = intValue(o["points"])
	opt.DeltaCredit = intValue(o["delta_credit"])
	opt.DeltaCash = floatValue(o["delta_cash"])
	opt.DeltaEnergy = intValue(o["delta_energy"])
	opt.XP = intPtrValue(o["xp"])
	return opt
}

// keyString renders an option key the way the web form compares it: integers as written,
// other numbers in shortest float form with a trailing ".0" when integral, booleans as True/False.
func keyString(v any) string {
	switch k := v.(type) {
	case string:
		return k
	case json.Number:
		return numberKey(k)
	case float64:
		return floatKey(k)
	case bool:
		if k {
			return "True"
		}
		return "False"
	default:
		b, _ := json.Marshal(k)
		return string(b)
	}
}

func numberKey(n json.Number) string {
	text := n.String()
	if !strings.ContainsAny(text, ".eE") {
		if i, ok := new(big.Int).SetString(text, 10); ok {
			return i.String()
		}
	}
	f, err := n.Float64()
	if err != nil {
		return text
	}
	return floatKey(f)
}

func floatKey(f float64) string {
	if math.IsInf(f, 0) {
		if f > 0 {
			return "inf"
		}
		return "-inf"
	}
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, _ := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return sci
	}
	text := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(text, ".") {
		text += ".0"
	}
	return text
}

// maxContentNumber bounds numeric fields; larger magnitudes read as absent.
const maxContentNumber = 1e15

func floatOf(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.Abs(f) > maxContentNumber {
		return 0, false
	}
	return f, true
}

func intValue(v any) int {
	f, ok := floatOf(v)
	if !ok {
		return 0
	}
	return int(f)
}

func floatValue(v any) float64 {
	f, _ := floatOf(v)
	return f
}

func intPtrValue(v any) *int {
	f, ok := floatOf(v)
	if !ok {
		return nil
	}
	n := int(f)
	return &n
}
