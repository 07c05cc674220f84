// Package config loads the ladderfit configuration file.
//
// Two formats are accepted, selected by file extension:
//   - .yaml / .yml, parsed with gopkg.in/yaml.v3
//   - .json / .jsonc, JSON with comments, stripped with github.com/tidwall/jsonc
//     and parsed with encoding/json
//
// Values missing from the file keep the defaults from Default. Command line
// flags are applied on top of the loaded Config by the cli package.
package config
