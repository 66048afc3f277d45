package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaultsToHelp(t *testing.T) {
	parsed, err := Parse(nil)
	require.NoError(t, err)
	require.True(t, parsed.ShowHelp)
	require.Equal(t, CommandHelp, parsed.Command)
}

func TestParseUploadWithConfig(t *testing.T) {
	parsed, err := Parse([]string{"--config", "/tmp/waveline.toml", "upload", "clip.mp4"})
	require.NoError(t, err)
	require.Equal(t, CommandUpload, parsed.Command)
	require.Equal(t, "clip.mp4", parsed.Arg)
	require.Equal(t, "/tmp/waveline.toml", parsed.ConfigPath)
	require.False(t, parsed.ShowHelp)
}

func TestParseArgMatrix(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantErr  string
		wantCmd  Command
		wantArg  string
		wantOut  string
		wantHelp bool
	}{
		{
			name:     "help short flag",
			args:     []string{"-h"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:    "version flag",
			args:    []string{"--version"},
			wantCmd: CommandVersion,
		},
		{
			name:    "render with out",
			args:    []string{"render", "abc123", "--out", "final.mp4"},
			wantCmd: CommandRender,
			wantArg: "abc123",
			wantOut: "final.mp4",
		},
		{
			name:    "resume",
			args:    []string{"resume", "abc123"},
			wantCmd: CommandResume,
			wantArg: "abc123",
		},
		{
			name:    "audition",
			args:    []string{"audition", "abc123"},
			wantCmd: CommandAudition,
			wantArg: "abc123",
		},
		{
			name:    "words takes no argument",
			args:    []string{"words", "extra"},
			wantErr: "unexpected argument",
		},
		{
			name:    "upload missing file",
			args:    []string{"upload"},
			wantErr: "requires a video file path",
		},
		{
			name:    "resume missing job",
			args:    []string{"resume"},
			wantErr: "requires a job identifier",
		},
		{
			name:    "out without render",
			args:    []string{"resume", "abc123", "--out", "x.mp4"},
			wantErr: "--out only applies to render",
		},
		{
			name:    "missing config path",
			args:    []string{"--config"},
			wantErr: "requires a path",
		},
		{
			name:    "unknown flag",
			args:    []string{"--bogus"},
			wantErr: "unknown flag",
		},
		{
			name:    "unknown command",
			args:    []string{"bogus"},
			wantErr: "unknown command",
		},
		{
			name:    "two positionals",
			args:    []string{"render", "abc", "def"},
			wantErr: "unexpected argument",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := Parse(tc.args)
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantCmd, parsed.Command)
			require.Equal(t, tc.wantArg, parsed.Arg)
			require.Equal(t, tc.wantOut, parsed.OutPath)
			require.Equal(t, tc.wantHelp, parsed.ShowHelp)
		})
	}
}

func TestHelpTextIncludesCoreCommands(t *testing.T) {
	text := HelpText("waveline")
	require.Contains(t, text, "upload")
	require.Contains(t, text, "resume")
	require.Contains(t, text, "render")
	require.Contains(t, text, "audition")
	require.Contains(t, text, "--config PATH")
}
