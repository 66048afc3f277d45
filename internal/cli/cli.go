// Package cli parses waveline command-line arguments.
package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandUpload   Command = "upload"
	CommandResume   Command = "resume"
	CommandRender   Command = "render"
	CommandAudition Command = "audition"
	CommandWords    Command = "words"
	CommandDoctor   Command = "doctor"
	CommandVersion  Command = "version"
	CommandHelp     Command = "help"
)

// commandArity maps each command to whether it takes one positional argument.
var commandArity = map[Command]bool{
	CommandUpload:   true,
	CommandResume:   true,
	CommandRender:   true,
	CommandAudition: true,
	CommandWords:    false,
	CommandDoctor:   false,
	CommandVersion:  false,
	CommandHelp:     false,
}

// argName names the positional argument each command expects, for errors.
var argName = map[Command]string{
	CommandUpload:   "a video file path",
	CommandResume:   "a job identifier",
	CommandRender:   "a job identifier",
	CommandAudition: "a job identifier",
}

type Parsed struct {
	Command    Command
	Arg        string
	ConfigPath string
	OutPath    string
	Debug      bool
	ShowHelp   bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}
	haveCommand := false

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
			haveCommand = true
		case "--debug":
			parsed.Debug = true
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		case "--out":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--out requires a path")
			}
			parsed.OutPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			if !haveCommand {
				cmd := Command(arg)
				if _, ok := commandArity[cmd]; !ok {
					return Parsed{}, fmt.Errorf("unknown command: %s", arg)
				}
				parsed.Command = cmd
				parsed.ShowHelp = cmd == CommandHelp
				haveCommand = true
				continue
			}

			if parsed.Arg != "" || !commandArity[parsed.Command] {
				return Parsed{}, fmt.Errorf("unexpected argument: %s", arg)
			}
			parsed.Arg = arg
		}
	}

	if haveCommand && commandArity[parsed.Command] && parsed.Arg == "" {
		return Parsed{}, fmt.Errorf("%s requires %s", parsed.Command, argName[parsed.Command])
	}
	if parsed.OutPath != "" && parsed.Command != CommandRender {
		return Parsed{}, errors.New("--out only applies to render")
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] [--debug] <command> [arg]

Commands:
  upload FILE     Submit a video for captioning and wait for the editable session
  resume JOB      Reattach to an existing session by job identifier
  render JOB      Render the final video for a session (--out sets the output file)
  audition JOB    Play through a session's timeline with censor beeps
  words           Print the backend's suggested forbidden words
  doctor          Run configuration and environment checks
  version         Print version information
  help            Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/waveline/config.toml)
  --out PATH      Output file for render (default: render_JOB.mp4)
  --debug         Verbose logging
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
