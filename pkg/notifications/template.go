package notifications

import (
	"context"
	"fmt"
	"html"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/valyala/fasttemplate"
	"gopkg.in/yaml.v3"
)

const (
	placeholderStart = "{{"
	placeholderEnd   = "}}"
)

// Template holds the per-type message templates. Empty fields mean "use the
// notification's own title/message".
type Template struct {
	Type            string `json:"type" yaml:"type"`
	SubjectTemplate string `json:"subject_template,omitempty" yaml:"subject"`
	BodyTemplate    string `json:"body_template,omitempty" yaml:"body"`
	SMSTemplate     string `json:"sms_template,omitempty" yaml:"sms"`
}

// Render replaces {{key}} placeholders in tpl with values from data.
// Placeholders without a matching key are left in place.
func Render(tpl string, data map[string]any) string {
	return render(tpl, data, nil)
}

// RenderHTML is Render with substituted values HTML-escaped. The template
// itself is trusted markup.
func RenderHTML(tpl string, data map[string]any) string {
	return render(tpl, data, html.EscapeString)
}

func render(tpl string, data map[string]any, escape func(string) string) string {
	if tpl == "" || !strings.Contains(tpl, placeholderStart) {
		return tpl
	}
	out, err := fasttemplate.ExecuteFuncStringWithErr(tpl, placeholderStart, placeholderEnd,
		func(w io.Writer, tag string) (int, error) {
			v, ok := data[strings.TrimSpace(tag)]
			if !ok {
				return io.WriteString(w, placeholderStart+tag+placeholderEnd)
			}
			if v == nil {
				return 0, nil
			}
			s := fmt.Sprint(v)
			if escape != nil {
				s = escape(s)
			}
			return io.WriteString(w, s)
		})
	if err != nil {
		return tpl
	}
	return out
}

// TemplateSet is a read-only TemplateStore backed by a map keyed by type.
type TemplateSet map[string]Template

// GetTemplate implements TemplateStore.
func (s TemplateSet) GetTemplate(_ context.Context, notifType string) (*Template, error) {
	t, ok := s[notifType]
	if !ok {
		return nil, ErrTemplateNotFound
	}
	return &t, nil
}

// Types returns the template types in the set, sorted.
func (s TemplateSet) Types() []string {
	types := make([]string, 0, len(s))
	for t := range s {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

type templateFile struct {
	Templates []Template `yaml:"templates"`
}

// LoadTemplatesYAML reads a template seed file:
//
//	templates:
//	  - type: appointment_reminder
//	    subject: "Appointment with {{doctor}}"
//	    body: "<p>See you at {{time}}</p>"
//	    sms: "Appointment at {{time}}"
func LoadTemplatesYAML(path string) (TemplateSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open templates file: %w", err)
	}
	defer f.Close()
	return DecodeTemplatesYAML(f)
}

// DecodeTemplatesYAML parses the template seed format from r.
func DecodeTemplatesYAML(r io.Reader) (TemplateSet, error) {
	var file templateFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	set := make(TemplateSet, len(file.Templates))
	for _, t := range file.Templates {
		if t.Type == "" {
			return nil, fmt.Errorf("decode templates: %w", ErrMissingType)
		}
		set[t.Type] = t
	}
	return set, nil
}
