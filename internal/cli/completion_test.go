package cli

import (
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestCompletionScripts(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			got, err := execute(t, New(io.Discard, LogInfo), "completion", shell)
			if err != nil {
				t.Fatalf("completion %s: %v", shell, err)
			}
			if !strings.Contains(got, "forcegraph") {
				t.Errorf("completion %s does not mention forcegraph", shell)
			}
		})
	}
	if _, err := execute(t, New(io.Discard, LogInfo), "completion", "tcsh"); err == nil {
		t.Error("completion tcsh should fail")
	}
}

func TestCompleteFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"format", []string{"render", "--format", ""}, []string{"dot", "json", "png", "svg"}},
		{"format list", []string{"render", "--format", "svg,"}, []string{"svg,dot", "svg,png"}},
		{"seeding", []string{"watch", "--seeding", ""}, []string{"phyllotaxis", "random"}},
		{"config format", []string{"config", "show", "--format", ""}, []string{"toml", "yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := execute(t, New(io.Discard, LogInfo), append([]string{cobra.ShellCompRequestCmd}, tt.args...)...)
			if err != nil {
				t.Fatalf("complete %v: %v", tt.args, err)
			}
			lines := strings.Split(got, "\n")
			for _, w := range tt.want {
				if !slices.Contains(lines, w) {
					t.Errorf("completions for %v = %q, missing %q", tt.args, lines, w)
				}
			}
		})
	}
}

func TestCompleteGraphFiles(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	for _, name := range []string{"layout", "render", "watch", "serve"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil {
			t.Fatal(err)
		}
		if cmd.ValidArgsFunction == nil {
			t.Errorf("%s has no argument completion", name)
		}
	}

	exts, dir := completeGraphFiles(nil, nil, "")
	if dir != cobra.ShellCompDirectiveFilterFileExt || !slices.Equal(exts, []string{"json"}) {
		t.Errorf("first argument completes %v (%d), want json files", exts, dir)
	}
	if _, dir := completeGraphFiles(nil, []string{"graph.json"}, ""); dir != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("second argument directive = %d, want no files", dir)
	}
}
