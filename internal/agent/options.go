package agent

import "strconv"

// ToolPresetAll leaves the CLI's full tool set enabled.
const ToolPresetAll = "all"

// Options configures a single agent run.
type Options struct {
	// MaxTurns bounds the number of reasoning/tool cycles (0 = CLI default).
	MaxTurns int
	// Model overrides the CLI's default model when set.
	Model string
	// ToolPreset names the tool set for the run. ToolPresetAll or empty
	// passes nothing through.
	ToolPreset string
	// SkipPermissions disables interactive permission prompts. Required in
	// non-interactive server contexts.
	SkipPermissions bool
	// PartialMessages asks for partial assistant output as stream events.
	PartialMessages bool
	// WorkDir confines the run's file-system tools to this directory.
	WorkDir string
}

// args builds the CLI invocation for prompt. Output is deterministic for a
// given Options value.
func (o Options) args(prompt string) []string {
	args := []string{"--print", "--verbose", "--output-format", "stream-json"}
	if o.PartialMessages {
		args = append(args, "--include-partial-messages")
	}
	if o.MaxTurns > 0 {
		args = append(args, "--max-turns", strconv.Itoa(o.MaxTurns))
	}
	if o.Model != "" {
		args = append(args, "--model", o.Model)
	}
	if o.ToolPreset != "" && o.ToolPreset != ToolPresetAll {
		args = append(args, "--tools", o.ToolPreset)
	}
	if o.SkipPermissions {
		args = append(args, "--dangerously-skip-permissions")
	}
	return append(args, prompt)
}
