package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Storyboard is the structured breakdown the script model drafts from a
// project concept.
type Storyboard struct {
	Sequences []StoryboardSequence `json:"sequences" jsonschema_description:"Ordered list of sequences that tell the story. Every sequence must be a single continuous shot."`
}

// StoryboardSequence is one drafted beat of the storyboard.
type StoryboardSequence struct {
	Title  string `json:"title" jsonschema_description:"Short working title for the sequence."`
	Prompt string `json:"prompt" jsonschema_description:"Visual generation prompt describing the frame: subject, setting, lighting, camera."`
	Script string `json:"script" jsonschema_description:"Voiceover script for the sequence, two to four spoken sentences."`
}

// ScriptDraft is the structured result of writing one sequence's script.
type ScriptDraft struct {
	Script string `json:"script" jsonschema_description:"The finished voiceover script text, ready to record."`
}

// GenerateSchema reflects a Go type into the JSON schema the model is held
// to.
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

var (
	storyboardSchema  = GenerateSchema[Storyboard]()
	scriptDraftSchema = GenerateSchema[ScriptDraft]()
)

// ScriptRequest carries the context the script model writes from.
type ScriptRequest struct {
	ProjectName string
	Concept     string
	Style       string
	Title       string
	Prompt      string
	Current     string
}

// DraftStoryboard asks the script model to break a concept into sequences.
func (s *Service) DraftStoryboard(ctx context.Context, name, concept, style string, count int) (*Storyboard, error) {
	if strings.TrimSpace(concept) == "" {
		return nil, errors.New("project concept is empty")
	}
	if count <= 0 {
		count = 5
	}

	prompt := fmt.Sprintf(`You are a storyboard writer for a short video production titled %q.
The concept: %s.`, name, concept)
	if strings.TrimSpace(style) != "" {
		prompt += fmt.Sprintf("\nVisual style to keep consistent across every sequence: %s.", style)
	}
	prompt += fmt.Sprintf(`
Break the story into exactly %d sequences. For each sequence write a short title,
a detailed visual prompt for an image model, and a voiceover script of two to
four sentences. The sequences must flow as one continuous story.`, count)

	sb, err := structured[Storyboard](ctx, s.scriptClient(), s.cfg.Script.Name, prompt, storyboardSchema)
	if err != nil {
		return nil, fmt.Errorf("drafting storyboard: %w", err)
	}
	if len(sb.Sequences) == 0 {
		return nil, errors.New("model returned an empty storyboard")
	}
	return sb, nil
}

// WriteScript drafts or rewrites one sequence's voiceover script.
func (s *Service) WriteScript(ctx context.Context, req ScriptRequest) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "You write voiceover scripts for a short video production titled %q.\n", req.ProjectName)
	if req.Concept != "" {
		fmt.Fprintf(&b, "Overall concept: %s\n", req.Concept)
	}
	if req.Style != "" {
		fmt.Fprintf(&b, "Tone and style: %s\n", req.Style)
	}
	if req.Title != "" {
		fmt.Fprintf(&b, "This sequence is titled %q.\n", req.Title)
	}
	if req.Prompt != "" {
		fmt.Fprintf(&b, "The sequence shows: %s\n", req.Prompt)
	}
	if strings.TrimSpace(req.Current) != "" {
		fmt.Fprintf(&b, "Rewrite and improve this existing script, keeping its intent:\n%s\n", req.Current)
	} else {
		b.WriteString("Write the voiceover script for this sequence.\n")
	}
	b.WriteString("Answer with two to four spoken sentences, no stage directions.")

	draft, err := structured[ScriptDraft](ctx, s.scriptClient(), s.cfg.Script.Name, b.String(), scriptDraftSchema)
	if err != nil {
		return "", fmt.Errorf("writing script: %w", err)
	}
	if strings.TrimSpace(draft.Script) == "" {
		return "", errors.New("model returned an empty script")
	}
	return draft.Script, nil
}

func (s *Service) scriptClient() openai.Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey())}
	if base := strings.TrimRight(strings.TrimSpace(s.cfg.Script.BaseURL), "/"); base != "" {
		opts = append(opts, option.WithBaseURL(base+"/v1/"))
	}
	return openai.NewClient(opts...)
}

// structured calls the chat API with a JSON schema response format and
// decodes the reply into T.
func structured[T any](ctx context.Context, client openai.Client, model, prompt string, schema interface{}) (*T, error) {
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "structured_response",
		Description: openai.String("Structured data response"),
		Schema:      schema,
		Strict:      openai.Bool(true),
	}

	completion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel(model),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("no response from model")
	}

	var out T
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &out); err != nil {
		return nil, fmt.Errorf("parsing structured response: %w", err)
	}
	return &out, nil
}
