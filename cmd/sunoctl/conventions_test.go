package main

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// helpRule inspects one command and returns a violation, or "" when the
// command follows the rule.
type helpRule struct {
	name string
	fix  string
	// runnableOnly skips group commands such as "config".
	runnableOnly bool
	check        func(cmd *cobra.Command) string
}

const maxShortLen = 60

var helpRules = []helpRule{
	{
		name:         "Example set",
		fix:          "Add Example: `  sunoctl <cmd> ...`.",
		runnableOnly: true,
		check: func(cmd *cobra.Command) string {
			if strings.TrimSpace(cmd.Example) == "" {
				return "missing Example"
			}

			return ""
		},
	},
	{
		name:         "Long set",
		fix:          "Add a Long field with a sentence or two about what the command does.",
		runnableOnly: true,
		check: func(cmd *cobra.Command) string {
			if strings.TrimSpace(cmd.Long) == "" {
				return "missing Long"
			}

			return ""
		},
	},
	{
		name: "no examples inside Long",
		fix:  "Move examples into the Example field.",
		check: func(cmd *cobra.Command) string {
			if strings.Contains(cmd.Long, "Example:") || strings.Contains(cmd.Long, "```") {
				return "Long embeds an example"
			}

			return ""
		},
	},
	{
		name: "--force has -f",
		fix:  `Use BoolVarP with the "f" shorthand.`,
		check: func(cmd *cobra.Command) string {
			if f := cmd.Flags().Lookup("force"); f != nil && f.Shorthand != "f" {
				return "--force without -f"
			}

			return ""
		},
	},
	{
		name: "Short is concise",
		fix:  "Keep Short to one line; put details in Long.",
		check: func(cmd *cobra.Command) string {
			if n := len(cmd.Short); n > maxShortLen {
				return fmt.Sprintf("Short is %d chars: %q", n, cmd.Short)
			}

			return ""
		},
	},
	{
		name: "Short style",
		fix:  "Start Short uppercase and drop the trailing period.",
		check: func(cmd *cobra.Command) string {
			if cmd.Short == "" {
				return ""
			}

			if !unicode.IsUpper([]rune(cmd.Short)[0]) || strings.HasSuffix(cmd.Short, ".") {
				return fmt.Sprintf("Short style: %q", cmd.Short)
			}

			return ""
		},
	},
}

// TestCommandHelpConventions applies every help rule to every command in the
// tree so new commands ship with complete, consistent help text.
func TestCommandHelpConventions(t *testing.T) {
	commands := collectAllCommands(newRootCmd())

	for _, rule := range helpRules {
		t.Run(rule.name, func(t *testing.T) {
			var violations []string

			for _, cmd := range commands {
				if rule.runnableOnly && !cmd.Runnable() {
					continue
				}

				if msg := rule.check(cmd); msg != "" {
					violations = append(violations, cmd.CommandPath()+": "+msg)
				}
			}

			if len(violations) > 0 {
				t.Errorf("%s:\n  %s\n\n%s", rule.name, strings.Join(violations, "\n  "), rule.fix)
			}
		})
	}
}

// TestDataCommandsSupportJSON maintains a registry of data-producing commands
// and their --json support status. Any new data command must be explicitly
// registered in either jsonSupported or jsonDeferred, forcing a conscious
// decision about machine-readable output.
func TestDataCommandsSupportJSON(t *testing.T) {
	// Commands that currently support --json output.
	jsonSupported := map[string]bool{
		"sunoctl generate":    true,
		"sunoctl batch":       true,
		"sunoctl status":      true,
		"sunoctl doctor":      true,
		"sunoctl paths":       true,
		"sunoctl config list": true,
		"sunoctl config get":  true,
		"sunoctl version":     true,
	}

	// Commands where --json support is intentionally deferred.
	jsonDeferred := map[string]bool{}

	// Data verbs that produce output suitable for machine consumption.
	dataVerbs := map[string]bool{
		"list":     true,
		"get":      true,
		"status":   true,
		"doctor":   true,
		"paths":    true,
		"generate": true,
		"batch":    true,
		"version":  true,
	}

	root := newRootCmd()

	var unregistered []string

	for _, cmd := range collectAllCommands(root) {
		if !cmd.Runnable() {
			continue
		}

		// Extract the verb (last segment of the command path).
		parts := strings.Fields(cmd.CommandPath())
		verb := parts[len(parts)-1]

		if !dataVerbs[verb] {
			continue
		}

		path := cmd.CommandPath()

		if jsonSupported[path] || jsonDeferred[path] {
			continue
		}

		unregistered = append(unregistered, path)
	}

	if len(unregistered) > 0 {
		t.Errorf("data commands not registered for --json support:\n  %s\n\nAdd each command to jsonSupported or jsonDeferred in this test.",
			strings.Join(unregistered, "\n  "))
	}
}

// TestNoShortFlagCollisions checks that no two flags within the same command
// share the same single-letter shorthand.
func TestNoShortFlagCollisions(t *testing.T) {
	root := newRootCmd()

	var collisions []string

	for _, cmd := range collectAllCommands(root) {
		seen := map[string]string{} // shorthand → flag name

		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if f.Shorthand == "" {
				return
			}

			if existing, ok := seen[f.Shorthand]; ok {
				collisions = append(collisions,
					fmt.Sprintf("%s: -%s claimed by both --%s and --%s",
						cmd.CommandPath(), f.Shorthand, existing, f.Name))
			}

			seen[f.Shorthand] = f.Name
		})
	}

	if len(collisions) > 0 {
		t.Errorf("short flag collisions:\n  %s",
			strings.Join(collisions, "\n  "))
	}
}

// TestFlagNamesAreKebabCase checks that all flag names follow kebab-case
// naming convention (lowercase letters, digits, and hyphens only).
func TestFlagNamesAreKebabCase(t *testing.T) {
	kebab := regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

	root := newRootCmd()

	var violations []string

	for _, cmd := range collectAllCommands(root) {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if !kebab.MatchString(f.Name) {
				violations = append(violations,
					fmt.Sprintf("%s: --%s", cmd.CommandPath(), f.Name))
			}
		})
	}

	if len(violations) > 0 {
		t.Errorf("flag names not in kebab-case:\n  %s\n\nUse --kebab-case for all flag names.",
			strings.Join(violations, "\n  "))
	}
}
