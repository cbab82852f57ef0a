package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const bootedLog = `00:00:00.012 |N| Application Print: Ryujinx Version: 1.1.217
00:00:00.013 |N| Application Print: Operating System: Windows 11 Pro 64-bit
00:00:00.013 |N| Application Print: CPU: AMD Ryzen 5 3600 6-Core Processor ; 12 logical
00:00:00.013 |N| Application Print: RAM: Total 16310 MB ; Available 9120 MB
00:00:00.014 |N| Application Print: Logs Enabled: Info, Warning, Error, Guest, Stub
00:00:00.120 |I| Configuration LogValueChange: EnablePtc set to: True
00:00:00.121 |I| Configuration LogValueChange: GraphicsBackend set to: Vulkan
00:00:01.500 |I| Gpu PrintGpuInformation: NVIDIA GeForce RTX 3060
00:00:01.900 |I| Application Loader LoadNca: Loading from C:\Users\alice\AppData\Roaming\Ryujinx\games
00:00:02.500 |I| HLE.Loader Loader Load: Application Loaded: Some Game v1.0.0 [0100ABCD00000000] [64-bit]
00:00:02.600 |I| Application Firmware Version: 16.0.3
00:00:03.000 |I| HLE.Input Hid Configure: ProController
00:00:04.000 |E| HLE.FileSystem ResultFsPermissionDenied
00:10:00.000 |I| Application Shutdown
`

const blockedLog = "00:00:00.000 |I| Loader Load: Application Loaded: Super Mario Odyssey v1.3.0 [0100000000010000] [64-bit]\n"

// setupTestConfig resets viper to the defaults with a private blocklist.
func setupTestConfig(t *testing.T) string {
	t.Helper()
	viper.Reset()
	setDefaults()
	path := filepath.Join(t.TempDir(), "blocklist.db")
	viper.Set("blocklist.path", path)
	viper.Set("color", "never")
	t.Cleanup(viper.Reset)
	return path
}

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

// newTestCmd builds a bare command carrying the flags of the real one.
func newTestCmd(out, errOut *bytes.Buffer, flags func(*cobra.Command)) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	if flags != nil {
		flags(cmd)
	}
	return cmd
}
