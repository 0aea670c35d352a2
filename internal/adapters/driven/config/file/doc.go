// Package file provides file-based configuration for the askme CLI.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable system prompt file
package file
