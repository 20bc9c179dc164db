package socket

// Handler implements each control action
type Handler interface {
	HandleStatusCommand(cmd Command) Response
	HandleGetConfigCommand(cmd Command) Response
	HandleSetConfigCommand(cmd Command) Response
	HandleRefreshCommand(cmd Command) Response
	HandleGetSnapshotCommand(cmd Command) Response
	HandleGetNamesCommand(cmd Command) Response
	HandleGetHistoryCommand(cmd Command) Response
}

// DefaultCommandHandler implements CommandHandler by routing to Handler methods
type DefaultCommandHandler struct {
	handler Handler
}

// NewDefaultCommandHandler creates a new default command handler
func NewDefaultCommandHandler(handler Handler) *DefaultCommandHandler {
	return &DefaultCommandHandler{handler: handler}
}

// HandleCommand processes a socket command
func (h *DefaultCommandHandler) HandleCommand(cmd Command) Response {
	switch cmd.Action {
	case ActionStatus:
		return h.handler.HandleStatusCommand(cmd)
	case ActionGetConfig:
		return h.handler.HandleGetConfigCommand(cmd)
	case ActionSetConfig:
		return h.handler.HandleSetConfigCommand(cmd)
	case ActionRefresh:
		return h.handler.HandleRefreshCommand(cmd)
	case ActionGetSnapshot:
		return h.handler.HandleGetSnapshotCommand(cmd)
	case ActionGetNames:
		return h.handler.HandleGetNamesCommand(cmd)
	case ActionGetHistory:
		return h.handler.HandleGetHistoryCommand(cmd)
	default:
		return Fail("Unknown command: %s", cmd.Action)
	}
}
