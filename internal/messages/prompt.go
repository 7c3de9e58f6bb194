package messages

// Prompt messages.
const (
	// PromptYesDefaultFmt formats yes/no prompts with yes as default.
	PromptYesDefaultFmt = "%s [Y/n]: "
	// PromptNoDefaultFmt formats yes/no prompts with no as default.
	PromptNoDefaultFmt    = "%s [y/N]: "
	PromptRetryYesNo      = "Please answer y or n."
	PromptInvalidResponse = "invalid response %q"
)
