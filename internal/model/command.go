package model

// CommandKind enumerates the built-in subcommands.
type CommandKind int

// The closed set of subcommands, plus Custom for configuration-defined
// command names.
const (
	CommandHelp CommandKind = iota
	CommandCmd
	CommandEval
	CommandExec
	CommandInit
	CommandList
	CommandPlant
	CommandShell
	CommandCustom
)

// Command is the parsed subcommand: a closed sum over the known commands
// with one variant carrying an arbitrary configuration-defined name.
type Command struct {
	Kind CommandKind
	// Name holds the command name for CommandCustom.
	Name string
}

// ParseCommand maps a subcommand string onto a Command. Unknown names
// become Custom commands resolved against the configuration's command
// definitions at dispatch time.
func ParseCommand(src string) Command {
	switch src {
	case "cmd":
		return Command{Kind: CommandCmd}
	case "eval":
		return Command{Kind: CommandEval}
	case "exec":
		return Command{Kind: CommandExec}
	case "help":
		return Command{Kind: CommandHelp}
	case "init":
		return Command{Kind: CommandInit}
	case "list", "ls":
		return Command{Kind: CommandList}
	case "plant":
		return Command{Kind: CommandPlant}
	case "shell", "sh":
		return Command{Kind: CommandShell}
	default:
		return Command{Kind: CommandCustom, Name: src}
	}
}

// String returns the canonical subcommand name.
func (c Command) String() string {
	switch c.Kind {
	case CommandCmd:
		return "cmd"
	case CommandEval:
		return "eval"
	case CommandExec:
		return "exec"
	case CommandHelp:
		return "help"
	case CommandInit:
		return "init"
	case CommandList:
		return "ls"
	case CommandPlant:
		return "plant"
	case CommandShell:
		return "shell"
	case CommandCustom:
		return c.Name
	}
	return "help"
}
