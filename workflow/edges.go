package workflow

import "context"

// RouteQuestion picks the next node from the routing category: general
// questions go to the chit-chat node, everything else through document
// retrieval. Pure function of the state, no I/O.
func RouteQuestion(ctx context.Context, state ConversationState) string {
	if state.Category == CategoryGeneral {
		return NodeGeneralAnswer
	}
	return NodeRelevantDocs
}
