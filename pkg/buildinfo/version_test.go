package buildinfo

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	info := Info()
	if info["version"] != Version || info["commit"] != Commit || info["built"] != Date {
		t.Errorf("Info() = %v", info)
	}
}

func TestTemplate(t *testing.T) {
	tmpl := Template()
	if !strings.HasPrefix(tmpl, "{{.Name}} version "+Version) {
		t.Errorf("Template() = %q", tmpl)
	}
	if !strings.Contains(String(), "commit: "+Commit) {
		t.Errorf("String() = %q", String())
	}
}
