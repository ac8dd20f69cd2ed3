package graphmail

import (
	"encoding/base64"
	"encoding/json"
)

// Wire types for the Graph sendMail request body. Fields that map to empty
// collections or empty strings are dropped from the serialized object via
// omitempty; the API treats absent and empty fields differently.
type emailAddress struct {
	Name    *string `json:"name"`
	Address string  `json:"address"`
}

type recipient struct {
	EmailAddress emailAddress `json:"emailAddress"`
}

type itemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type fileAttachment struct {
	ODataType    string  `json:"@odata.type"`
	Name         string  `json:"name"`
	ContentID    *string `json:"contentId"`
	ContentType  string  `json:"contentType"`
	ContentBytes string  `json:"contentBytes"`
	Size         int     `json:"size"`
	IsInline     bool    `json:"isInline"`
}

type payloadMessage struct {
	Subject       string           `json:"subject,omitempty"`
	Sender        *recipient       `json:"sender,omitempty"`
	From          *recipient       `json:"from,omitempty"`
	ReplyTo       []recipient      `json:"replyTo,omitempty"`
	ToRecipients  []recipient      `json:"toRecipients,omitempty"`
	CcRecipients  []recipient      `json:"ccRecipients,omitempty"`
	BccRecipients []recipient      `json:"bccRecipients,omitempty"`
	Importance    string           `json:"importance,omitempty"`
	Body          *itemBody        `json:"body,omitempty"`
	Attachments   []fileAttachment `json:"attachments,omitempty"`
}

type sendMailPayload struct {
	Message payloadMessage `json:"message"`
}

// buildPayload converts a Message into the sendMail request body. The
// transformation is pure: malformed input (missing subject, no recipients)
// simply results in absent payload fields.
func buildPayload(msg *Message) sendMailPayload {
	m := payloadMessage{
		Subject:       msg.Subject,
		ReplyTo:       toRecipientCollection(msg.ReplyTo),
		ToRecipients:  toRecipientCollection(msg.To),
		CcRecipients:  toRecipientCollection(msg.Cc),
		BccRecipients: toRecipientCollection(msg.Bcc),
		Importance:    importanceFor(msg.Priority),
		Body:          contentFor(msg),
		Attachments:   toAttachmentCollection(msg.Attachments),
	}

	// sender and from are both the single envelope sender.
	if msg.From.Address != "" {
		from := toRecipient(msg.From)
		m.Sender = &from
		m.From = &from
	}

	return sendMailPayload{Message: m}
}

// MarshalPayload returns the JSON sendMail request body for msg. It is used
// by the transport before posting and by callers that want to preview the
// exact bytes that would go on the wire.
func MarshalPayload(msg *Message) ([]byte, error) {
	return json.Marshal(buildPayload(msg))
}

func toRecipient(a Address) recipient {
	r := recipient{}
	r.EmailAddress.Address = a.Address
	if a.Name != "" {
		name := a.Name
		r.EmailAddress.Name = &name
	}
	return r
}

func toRecipientCollection(addrs []Address) []recipient {
	if len(addrs) == 0 {
		return nil
	}
	out := make([]recipient, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, toRecipient(a))
	}
	return out
}

// importanceFor collapses the five-level priority scale to the two values
// the API understands: exactly PriorityNormal maps to "Normal", every other
// value (above or below normal) to "High".
func importanceFor(priority int) string {
	if priority == PriorityNormal {
		return "Normal"
	}
	return "High"
}

// contentFor selects the message body: HTML when present, else plain text,
// else nothing. A message with neither body is sent without a body field.
func contentFor(msg *Message) *itemBody {
	switch {
	case msg.HTMLBody != "":
		return &itemBody{ContentType: "html", Content: msg.HTMLBody}
	case msg.TextBody != "":
		return &itemBody{ContentType: "text", Content: msg.TextBody}
	}
	return nil
}

// toAttachmentCollection maps attachments to Graph fileAttachment objects.
// Inline attachments are not distinguished: everything is encoded with
// isInline false, which may render inline parts twice at the receiver.
func toAttachmentCollection(attachments []Attachment) []fileAttachment {
	if len(attachments) == 0 {
		return nil
	}
	out := make([]fileAttachment, 0, len(attachments))
	for _, a := range attachments {
		fa := fileAttachment{
			ODataType:    "#microsoft.graph.fileAttachment",
			Name:         a.Name,
			ContentType:  a.ContentType,
			ContentBytes: base64.StdEncoding.EncodeToString(a.Content),
			Size:         len(a.Content),
			IsInline:     false,
		}
		if a.ContentID != "" {
			cid := a.ContentID
			fa.ContentID = &cid
		}
		out = append(out, fa)
	}
	return out
}
