package installer

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/powerplanchanger/ppc/internal/version"
)

const wxsName = "powerplanchanger.wxs"

func readWxs(t *testing.T) []byte {
	t.Helper()
	wxsPath := wxsName
	if _, err := os.Stat(wxsPath); os.IsNotExist(err) {
		// Try from project root
		wxsPath = filepath.Join("..", "installer", wxsName)
	}

	data, err := os.ReadFile(wxsPath)
	if err != nil {
		t.Skipf("WiX file not found at %s: %v", wxsPath, err)
	}
	return data
}

// TestWixFileValid ensures the WiX XML configuration is valid.
func TestWixFileValid(t *testing.T) {
	data := readWxs(t)

	var result interface{}
	if err := xml.Unmarshal(data, &result); err != nil {
		t.Errorf("WiX file is not valid XML: %v", err)
	}
}

// TestWixFileContents checks for required elements in the WiX file.
func TestWixFileContents(t *testing.T) {
	content := string(readWxs(t))

	required := []string{
		"Package",
		"Feature",
		"CliComponent",
		"TrayComponent",
		"AutostartComponent",
		"ppc.exe",
		"ppc-tray.exe",
		`CurrentVersion\Run`,
		"UpgradeCode",
		"MajorUpgrade",
	}

	for _, req := range required {
		if !strings.Contains(content, req) {
			t.Errorf("WiX file missing required element: %s", req)
		}
	}
}

// TestWixVersionMatchesBuild keeps the MSI version in step with the binaries.
func TestWixVersionMatchesBuild(t *testing.T) {
	var doc struct {
		Package struct {
			Version string `xml:"Version,attr"`
		} `xml:"Package"`
	}
	if err := xml.Unmarshal(readWxs(t), &doc); err != nil {
		t.Fatalf("parse WiX file: %v", err)
	}

	want := strings.TrimPrefix(version.Version, "v")
	if doc.Package.Version != want {
		t.Errorf("Package Version = %q, want %q", doc.Package.Version, want)
	}
}

// TestBuildScriptExists checks that the build script exists.
func TestBuildScriptExists(t *testing.T) {
	scripts := []string{
		"build-installer.ps1",
		filepath.Join("..", "installer", "build-installer.ps1"),
	}

	found := false
	for _, script := range scripts {
		if _, err := os.Stat(script); err == nil {
			found = true
			break
		}
	}

	if !found {
		t.Error("Build script (build-installer.ps1) not found")
	}
}
