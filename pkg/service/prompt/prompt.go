package prompt

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"
)

// SystemPrompt is sent as the system message by providers that accept one
const SystemPrompt = "You are a world-class WordPress PHP developer specialized in creating secure, production-ready plugins."

//go:embed template/plugin.md
var pluginTemplateRaw string

var pluginTemplate = template.Must(template.New("plugin").Parse(pluginTemplateRaw))

type pluginInput struct {
	Request string
	Context string
}

// Build renders the generation prompt for a user request and a retrieved
// context block. An empty context block omits the reference section.
func Build(userRequest, contextBlock string) string {
	var buf bytes.Buffer
	input := pluginInput{
		Request: strings.TrimSpace(userRequest),
		Context: strings.TrimSpace(contextBlock),
	}
	// The template is parsed at init and takes only string fields, so Execute cannot fail.
	if err := pluginTemplate.Execute(&buf, input); err != nil {
		panic("failed to render plugin prompt template: " + err.Error())
	}
	return buf.String()
}
