package line

import "strings"

type CommandType int

const (
	CommandUnknown CommandType = iota
	CommandCreateEvent
	CommandShowResult
)

const (
	createEventPrefix = "/約 "
	showResultPrefix  = "/結果 "
)

type Command struct {
	Type CommandType
	// CommandCreateEvent 时为活动名称，CommandShowResult 时为活动 ID
	Argument string
}

func ParseCommand(text string) Command {
	text = strings.TrimSpace(text)

	for prefix, commandType := range map[string]CommandType{
		createEventPrefix: CommandCreateEvent,
		showResultPrefix:  CommandShowResult,
	} {
		if argument, ok := strings.CutPrefix(text, prefix); ok {
			argument = strings.TrimSpace(argument)
			if argument == "" {
				break
			}
			return Command{Type: commandType, Argument: argument}
		}
	}

	return Command{Type: CommandUnknown}
}
