package prompts

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

const defaultPromptsPath = "prompts.yaml"

type Prompts struct {
	System SystemPrompts `yaml:"system"`
	Script ScriptPrompts `yaml:"script"`
	Title  TitlePrompts  `yaml:"title"`
}

type SystemPrompts struct {
	Planner string `yaml:"planner"`
	Chat    string `yaml:"chat"`
	Title   string `yaml:"title"`
}

type ScriptPrompts struct {
	Plan string `yaml:"plan"`
}

type TitlePrompts struct {
	Generate string `yaml:"generate"`
}

type PlannerParams struct {
	MaxDirectives      int
	TargetSeconds      int
	DocumentaryVoice   string
	UpbeatVoice        string
	PromotionalVoice   string
	InstructionalVoice string
	NarratorVoice      string
}

type PlanParams struct {
	Topic string
}

type TitleParams struct {
	Script string
}

const defaultPlannerSystem = `You plan narrated videos. Reply with a single JSON object and nothing else, in exactly this shape:
{"tone": "<tone>", "script": [{"text": "<one spoken sentence>", "image_prompt": "<descriptive image generation prompt>", "voice_id": "<voice id>"}]}

Rules:
- At most {{.MaxDirectives}} sentences, short enough to narrate in about {{.TargetSeconds}} seconds total.
- Every sentence gets its own vivid image_prompt describing a single still image.
- Pick one tone for the whole script from: documentary, upbeat, promotional, instructional, neutral.
- Pick voice_id from the tone table and use the SAME voice_id for every sentence:
  documentary -> {{.DocumentaryVoice}}
  upbeat -> {{.UpbeatVoice}}
  promotional -> {{.PromotionalVoice}}
  instructional -> {{.InstructionalVoice}}
  neutral -> {{.NarratorVoice}}
- No markdown, no commentary, JSON only.`

const defaultChatSystem = `You are a friendly assistant whose replies are read aloud by a text-to-speech voice. Answer in two or three short conversational sentences. No markdown, no lists, no emoji.`

const defaultTitleSystem = `You name videos. Reply with a short title only, max 60 characters, no quotes.`

const defaultPlanPrompt = `Write the video script for this topic: {{.Topic}}`

const defaultTitlePrompt = `Give this narration script a title:

{{.Script}}`

// Default returns the built-in prompt set.
func Default() *Prompts {
	return &Prompts{
		System: SystemPrompts{
			Planner: defaultPlannerSystem,
			Chat:    defaultChatSystem,
			Title:   defaultTitleSystem,
		},
		Script: ScriptPrompts{Plan: defaultPlanPrompt},
		Title:  TitlePrompts{Generate: defaultTitlePrompt},
	}
}

// Load returns the default prompts, overridden by prompts.yaml when present.
func Load() (*Prompts, error) {
	return LoadFrom(defaultPromptsPath)
}

func LoadFrom(path string) (*Prompts, error) {
	p := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, fmt.Errorf("read prompts file: %w", err)
	}

	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse prompts file: %w", err)
	}

	return p, nil
}

func (p *Prompts) RenderPlannerSystem(params PlannerParams) (string, error) {
	return render(p.System.Planner, params)
}

func (p *Prompts) RenderPlan(params PlanParams) (string, error) {
	return render(p.Script.Plan, params)
}

func (p *Prompts) RenderTitle(params TitleParams) (string, error) {
	return render(p.Title.Generate, params)
}

func render(tmpl string, data any) (string, error) {
	t, err := template.New("prompt").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
