package graphmail

import (
	"encoding/base64"
	"encoding/json"
	"reflect"
	"testing"
)

// marshalToMap builds the payload for msg and unmarshals it into a generic
// map so tests can assert on the exact wire shape.
func marshalToMap(t *testing.T, msg *Message) map[string]interface{} {
	t.Helper()

	data, err := MarshalPayload(msg)
	if err != nil {
		t.Fatalf("MarshalPayload() error = %v", err)
	}

	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal payload: %v", err)
	}
	return out
}

func messageField(t *testing.T, msg *Message) map[string]interface{} {
	t.Helper()

	out := marshalToMap(t, msg)
	inner, ok := out["message"].(map[string]interface{})
	if !ok {
		t.Fatalf("payload has no top-level message object: %v", out)
	}
	return inner
}

func TestBuildPayload_EmptyCollectionsOmitted(t *testing.T) {
	msg := &Message{
		From:     Address{Address: "a@x.com"},
		To:       []Address{{Address: "b@x.com"}},
		Subject:  "Hi",
		TextBody: "Hello",
		Priority: PriorityNormal,
	}

	inner := messageField(t, msg)

	for _, key := range []string{"replyTo", "ccRecipients", "bccRecipients", "attachments"} {
		if _, present := inner[key]; present {
			t.Errorf("payload contains %q for a message with no %s entries", key, key)
		}
	}
}

func TestBuildPayload_ImportanceMapping(t *testing.T) {
	tests := []struct {
		name     string
		priority int
		want     string
	}{
		{"normal priority", PriorityNormal, "Normal"},
		{"highest priority", PriorityHighest, "High"},
		{"high priority", PriorityHigh, "High"},
		{"low priority", PriorityLow, "High"},
		{"lowest priority", PriorityLowest, "High"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &Message{
				From:     Address{Address: "a@x.com"},
				Priority: tt.priority,
			}
			inner := messageField(t, msg)
			if got := inner["importance"]; got != tt.want {
				t.Errorf("importance for priority %d = %v, want %q", tt.priority, got, tt.want)
			}
		})
	}
}

func TestBuildPayload_BodySelection(t *testing.T) {
	tests := []struct {
		name            string
		textBody        string
		htmlBody        string
		wantContentType string
		wantContent     string
		wantBody        bool
	}{
		{
			name:            "html only",
			htmlBody:        "<p>Hello</p>",
			wantContentType: "html",
			wantContent:     "<p>Hello</p>",
			wantBody:        true,
		},
		{
			name:            "text only",
			textBody:        "Hello",
			wantContentType: "text",
			wantContent:     "Hello",
			wantBody:        true,
		},
		{
			name:            "html wins over text",
			textBody:        "Hello",
			htmlBody:        "<p>Hello</p>",
			wantContentType: "html",
			wantContent:     "<p>Hello</p>",
			wantBody:        true,
		},
		{
			name:     "no body at all",
			wantBody: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &Message{
				From:     Address{Address: "a@x.com"},
				TextBody: tt.textBody,
				HTMLBody: tt.htmlBody,
				Priority: PriorityNormal,
			}
			inner := messageField(t, msg)

			body, present := inner["body"]
			if present != tt.wantBody {
				t.Fatalf("body present = %v, want %v", present, tt.wantBody)
			}
			if !tt.wantBody {
				return
			}

			bodyMap := body.(map[string]interface{})
			if bodyMap["contentType"] != tt.wantContentType {
				t.Errorf("contentType = %v, want %q", bodyMap["contentType"], tt.wantContentType)
			}
			if bodyMap["content"] != tt.wantContent {
				t.Errorf("content = %v, want %q", bodyMap["content"], tt.wantContent)
			}
		})
	}
}

func TestBuildPayload_AttachmentRoundTrip(t *testing.T) {
	raw := []byte("some binary\x00content\xffhere")
	msg := &Message{
		From:     Address{Address: "a@x.com"},
		Priority: PriorityNormal,
		Attachments: []Attachment{
			{
				Name:        "report.pdf",
				ContentID:   "cid-1",
				ContentType: "application/pdf",
				Content:     raw,
			},
		},
	}

	inner := messageField(t, msg)

	attachments, ok := inner["attachments"].([]interface{})
	if !ok || len(attachments) != 1 {
		t.Fatalf("attachments = %v, want exactly one entry", inner["attachments"])
	}
	att := attachments[0].(map[string]interface{})

	if att["@odata.type"] != "#microsoft.graph.fileAttachment" {
		t.Errorf("@odata.type = %v", att["@odata.type"])
	}
	if att["name"] != "report.pdf" {
		t.Errorf("name = %v", att["name"])
	}
	if att["contentId"] != "cid-1" {
		t.Errorf("contentId = %v", att["contentId"])
	}
	if att["contentType"] != "application/pdf" {
		t.Errorf("contentType = %v", att["contentType"])
	}
	if att["isInline"] != false {
		t.Errorf("isInline = %v, want false", att["isInline"])
	}
	if got := int(att["size"].(float64)); got != len(raw) {
		t.Errorf("size = %d, want %d", got, len(raw))
	}

	decoded, err := base64.StdEncoding.DecodeString(att["contentBytes"].(string))
	if err != nil {
		t.Fatalf("contentBytes is not valid base64: %v", err)
	}
	if !reflect.DeepEqual(decoded, raw) {
		t.Errorf("contentBytes decodes to %q, want %q", decoded, raw)
	}
}

func TestBuildPayload_AttachmentWithoutContentIDIsNull(t *testing.T) {
	msg := &Message{
		From:        Address{Address: "a@x.com"},
		Priority:    PriorityNormal,
		Attachments: []Attachment{{Name: "a.txt", ContentType: "text/plain", Content: []byte("x")}},
	}

	inner := messageField(t, msg)
	att := inner["attachments"].([]interface{})[0].(map[string]interface{})

	value, present := att["contentId"]
	if !present {
		t.Fatal("contentId key missing from attachment")
	}
	if value != nil {
		t.Errorf("contentId = %v, want null", value)
	}
}

func TestBuildPayload_RecipientNames(t *testing.T) {
	msg := &Message{
		From:     Address{Address: "a@x.com"},
		To:       []Address{{Address: "b@x.com", Name: "Bob"}, {Address: "c@x.com"}},
		Priority: PriorityNormal,
	}

	inner := messageField(t, msg)
	to := inner["toRecipients"].([]interface{})
	if len(to) != 2 {
		t.Fatalf("toRecipients length = %d, want 2", len(to))
	}

	first := to[0].(map[string]interface{})["emailAddress"].(map[string]interface{})
	if first["name"] != "Bob" || first["address"] != "b@x.com" {
		t.Errorf("first recipient = %v", first)
	}

	// A bare address still produces an entry, with a null name.
	second := to[1].(map[string]interface{})["emailAddress"].(map[string]interface{})
	if name, present := second["name"]; !present || name != nil {
		t.Errorf("bare address name = %v (present=%v), want explicit null", name, present)
	}
	if second["address"] != "c@x.com" {
		t.Errorf("second recipient address = %v", second["address"])
	}
}

func TestBuildPayload_EmptySubjectOmitted(t *testing.T) {
	msg := &Message{
		From:     Address{Address: "a@x.com"},
		Priority: PriorityNormal,
	}

	inner := messageField(t, msg)
	if _, present := inner["subject"]; present {
		t.Error("payload contains subject for a message without one")
	}
}

func TestBuildPayload_EndToEndShape(t *testing.T) {
	msg := &Message{
		From:     Address{Address: "a@x.com"},
		To:       []Address{{Address: "b@x.com"}},
		Subject:  "Hi",
		TextBody: "Hello",
		Priority: PriorityNormal,
	}

	got := marshalToMap(t, msg)

	const wantJSON = `{
		"message": {
			"subject": "Hi",
			"sender": {"emailAddress": {"name": null, "address": "a@x.com"}},
			"from": {"emailAddress": {"name": null, "address": "a@x.com"}},
			"toRecipients": [{"emailAddress": {"name": null, "address": "b@x.com"}}],
			"importance": "Normal",
			"body": {"contentType": "text", "content": "Hello"}
		}
	}`
	var want map[string]interface{}
	if err := json.Unmarshal([]byte(wantJSON), &want); err != nil {
		t.Fatalf("bad expectation JSON: %v", err)
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("payload mismatch\n got: %#v\nwant: %#v", got, want)
	}
}

func TestBuildPayload_IsPure(t *testing.T) {
	msg := &Message{
		From:        Address{Address: "a@x.com"},
		To:          []Address{{Address: "b@x.com", Name: "Bob"}},
		Subject:     "Hi",
		TextBody:    "Hello",
		Priority:    PriorityNormal,
		Attachments: []Attachment{{Name: "a.txt", ContentType: "text/plain", Content: []byte("x")}},
	}

	first, err := MarshalPayload(msg)
	if err != nil {
		t.Fatalf("MarshalPayload() error = %v", err)
	}
	second, err := MarshalPayload(msg)
	if err != nil {
		t.Fatalf("MarshalPayload() error = %v", err)
	}

	if string(first) != string(second) {
		t.Error("two builds of the same message produced different payloads")
	}
}
