package rendering

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"text/template"

	"github.com/jonathan/coverletter-agent/internal/types"
)

// defaultTemplate lays the letter out as prose paragraphs with the value
// propositions as a short list between body and closing.
const defaultTemplate = `{{.Opening}}

{{.Alignment}}

{{.Leadership}}

{{range .ValueProps}}{{.Title}}: {{.Detail}}
{{end}}
{{.Closing}}

Sincerely,
{{.SignatureName}}
`

// templateData is the structure letter templates render against.
type templateData struct {
	Opening       string
	Alignment     string
	Leadership    string
	ValueProps    []types.ValueProp
	Closing       string
	SignatureName string
}

var blankLines = regexp.MustCompile(`\n{3,}`)

// TextRenderer renders a section map as plain text through a template.
type TextRenderer struct {
	tmpl *template.Template
}

// NewTextRenderer creates a renderer using the built-in letter layout.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{tmpl: template.Must(template.New("letter").Parse(defaultTemplate))}
}

// NewTextRendererFromFile creates a renderer from a template file.
func NewTextRendererFromFile(path string) (*TextRenderer, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &TemplateError{
				Message: fmt.Sprintf("template file not found: %s", path),
				Cause:   err,
			}
		}
		return nil, &TemplateError{
			Message: fmt.Sprintf("failed to read template file: %s", path),
			Cause:   err,
		}
	}

	tmpl, err := template.New("letter").Parse(string(content))
	if err != nil {
		return nil, &TemplateError{
			Message: "failed to parse letter template",
			Cause:   err,
		}
	}
	return &TextRenderer{tmpl: tmpl}, nil
}

// Render produces the letter bytes. Empty sections collapse instead of
// leaving blank gaps, and the output ends with a single trailing newline.
func (r *TextRenderer) Render(sections *types.SectionMap) ([]byte, error) {
	if sections == nil {
		return nil, &RenderError{Message: "no sections to render"}
	}

	data := templateData{
		Opening:       sections.Get(types.SectionOpening),
		Alignment:     sections.Get(types.SectionAlignment),
		Leadership:    sections.Get(types.SectionLeadership),
		ValueProps:    valueProps(sections),
		Closing:       sections.Get(types.SectionClosing),
		SignatureName: sections.Get(types.SectionSignatureName),
	}

	var result strings.Builder
	if err := r.tmpl.Execute(&result, data); err != nil {
		return nil, &TemplateError{
			Message: "failed to execute letter template",
			Cause:   err,
		}
	}

	letter := blankLines.ReplaceAllString(result.String(), "\n\n")
	return []byte(strings.TrimSpace(letter) + "\n"), nil
}

// valueProps collects the non-empty title/detail pairs in template order.
func valueProps(sections *types.SectionMap) []types.ValueProp {
	pairs := [][2]string{
		{types.SectionValueProp1Title, types.SectionValueProp1Detail},
		{types.SectionValueProp2Title, types.SectionValueProp2Detail},
		{types.SectionValueProp3Title, types.SectionValueProp3Detail},
		{types.SectionValueProp4Title, types.SectionValueProp4Detail},
	}

	var props []types.ValueProp
	for _, pair := range pairs {
		title := strings.TrimSpace(sections.Get(pair[0]))
		detail := strings.TrimSpace(sections.Get(pair[1]))
		if title == "" && detail == "" {
			continue
		}
		props = append(props, types.ValueProp{Title: title, Detail: detail})
	}
	return props
}
