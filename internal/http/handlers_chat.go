package http

import (
	"html/template"
	"net/http"
)

type chatResponse struct {
	Response string `json:"response"`
	Stage    string `json:"stage"`
}

// handleChat answers {"message": "..."} or a form field named message.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		s.fail(w, r, err)
		return
	}
	message := parser.Get("message")

	reply, err := s.svc.ChatReply(r.Context(), message)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if isHTMX(r) {
		NewHTMXResponse().
			ResetForm().
			Fragment(`<div class="chat-turn"><div class="chat-user">` + template.HTMLEscapeString(message) +
				`</div><div class="chat-bot">` + template.HTMLEscapeString(reply.Text) + `</div></div>`).
			Write(w)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Response: reply.Text, Stage: string(reply.Stage)})
}
