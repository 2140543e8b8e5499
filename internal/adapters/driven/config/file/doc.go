// Package file keeps docchat's settings and prompts on the local disk.
//
// ConfigStore reads and writes ~/.docchat/config.toml, or a YAML file when
// the path ends in .yaml or .yml. PromptStore serves the editable prompt
// templates under ~/.docchat/prompts.
package file
