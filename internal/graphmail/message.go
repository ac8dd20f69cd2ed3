package graphmail

// Priority levels for outgoing messages, following the classic X-Priority
// scale where 3 is normal. The Graph API only distinguishes two importance
// values, so everything except PriorityNormal is sent as "High".
const (
	PriorityHighest = 1
	PriorityHigh    = 2
	PriorityNormal  = 3
	PriorityLow     = 4
	PriorityLowest  = 5
)

// Address is a single mailbox address with an optional display name.
type Address struct {
	Address string // mailbox address, e.g. "user@example.com"
	Name    string // optional display name; empty means no name
}

// Attachment is a file attachment carried by an outgoing message.
// Content holds the raw (not yet encoded) bytes; the payload builder
// derives the size and base64 encoding from it.
type Attachment struct {
	Name        string // filename shown to the recipient
	ContentID   string // optional content-id for inline references
	ContentType string // MIME content type, e.g. "application/pdf"
	Content     []byte // raw file content
}

// Message is the outgoing-mail representation handed to the transport.
// It is constructed by the caller per send request and treated as
// read-only by this package.
type Message struct {
	From        Address   // envelope sender; exactly one, required
	ReplyTo     []Address // optional reply-to addresses
	To          []Address // primary recipients
	Cc          []Address // carbon-copy recipients
	Bcc         []Address // blind-copy recipients
	Subject     string
	TextBody    string // plain text body; ignored when HTMLBody is set
	HTMLBody    string // HTML body; wins over TextBody when both are set
	Priority    int    // PriorityNormal maps to "Normal", anything else to "High"
	Attachments []Attachment
}
