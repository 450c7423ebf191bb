package presentation

import (
	"fmt"
	"sort"
	"strings"
)

// ShortcutMarkdown describes one shortcut as a markdown card.
func ShortcutMarkdown(dto ShortcutDTO) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", dto.Name)
	fmt.Fprintf(&b, "```sh\n%s\n```\n\n", dto.Cmd)

	fmt.Fprintf(&b, "- **id**: `%s`\n", dto.ID)
	if dto.Icon != "" {
		fmt.Fprintf(&b, "- **icon**: %s\n", dto.Icon)
	}
	state := dto.State
	if state == "" {
		state = "idle"
	}
	fmt.Fprintf(&b, "- **state**: %s\n", state)

	if len(dto.Metadata) > 0 {
		keys := make([]string, 0, len(dto.Metadata))
		for k := range dto.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString("\n| key | value |\n|---|---|\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "| %s | %s |\n", k, dto.Metadata[k])
		}
	}
	return b.String()
}
