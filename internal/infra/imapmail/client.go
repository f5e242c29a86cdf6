package imapmail

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"
)

// Message is one decoded inbox message
type Message struct {
	UID            uint32
	MessageID      string
	InReplyTo      string
	From           string
	To             string
	Subject        string
	TextBody       string
	Date           time.Time
	HasAttachments bool
}

// Client wraps go-imap v2 for polling an INBOX. Each operation dials
// its own connection; the caller never holds a session open across
// poll intervals.
type Client struct {
	host     string
	port     string
	username string
	password string
}

// NewClient creates a new IMAP client configuration
func NewClient(host, port, username, password string) *Client {
	return &Client{
		host:     host,
		port:     port,
		username: username,
		password: password,
	}
}

// connect dials the server and authenticates. The caller is
// responsible for Logout on the returned client.
func (c *Client) connect(_ context.Context) (*imapclient.Client, error) {
	addr := c.host + ":" + c.port

	client, err := imapclient.DialTLS(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(c.username, c.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("authentication failed for %s: %w", c.username, err)
	}

	return client, nil
}

// Ping verifies the server is reachable and credentials still work
func (c *Client) Ping(ctx context.Context) error {
	client, err := c.connect(ctx)
	if err != nil {
		return err
	}
	return client.Logout().Wait()
}

// FetchUnseen returns every unseen message in INBOX, decoded. A
// message that fails to decode is skipped; decoding errors never abort
// the whole fetch.
func (c *Client) FetchUnseen(ctx context.Context) ([]Message, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		return nil, fmt.Errorf("selecting INBOX: %w", err)
	}

	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
	}
	searchData, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching unseen messages: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	uidSet := imap.UIDSetNum(uids...)

	bodySection := &imap.FetchItemBodySection{
		Peek: true, // do not set \Seen as a fetch side effect
	}
	fetchOpts := &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := client.Fetch(uidSet, fetchOpts)

	var messages []Message
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			continue
		}

		messages = append(messages, messageFromBuffer(buf, bodySection))
	}

	if err := fetchCmd.Close(); err != nil {
		return messages, fmt.Errorf("fetching unseen messages: %w", err)
	}

	return messages, nil
}

// MarkSeen adds the \Seen flag to a message
func (c *Client) MarkSeen(ctx context.Context, uid uint32) error {
	client, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Logout().Wait() }()

	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		return fmt.Errorf("selecting INBOX: %w", err)
	}

	uidSet := imap.UIDSetNum(imap.UID(uid))
	storeCmd := client.Store(uidSet, &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil)

	return storeCmd.Close()
}

// messageFromBuffer builds a Message from fetched data
func messageFromBuffer(buf *imapclient.FetchMessageBuffer, section *imap.FetchItemBodySection) Message {
	msg := Message{
		UID: uint32(buf.UID),
	}

	if buf.Envelope != nil {
		msg.MessageID = buf.Envelope.MessageID
		msg.Subject = buf.Envelope.Subject
		msg.Date = buf.Envelope.Date

		if len(buf.Envelope.From) > 0 {
			msg.From = buf.Envelope.From[0].Addr()
		}
		if len(buf.Envelope.To) > 0 {
			msg.To = buf.Envelope.To[0].Addr()
		}
	}

	rawBody := buf.FindBodySection(section)
	if rawBody != nil {
		text, inReplyTo, hasAttachments := parseMIMEBody(rawBody)
		msg.TextBody = text
		msg.InReplyTo = inReplyTo
		msg.HasAttachments = hasAttachments
	}

	return msg
}

// parseMIMEBody extracts the plain-text body, the In-Reply-To header
// and an attachment flag from a raw RFC 5322 message
func parseMIMEBody(raw []byte) (textBody, inReplyTo string, hasAttachments bool) {
	reader := bytes.NewReader(raw)

	mr, err := mail.CreateReader(reader)
	if err != nil {
		// treat an unparseable message as plain text
		return string(raw), "", false
	}
	defer mr.Close()

	inReplyTo = strings.TrimSpace(mr.Header.Get("In-Reply-To"))

	var htmlBody string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			body, readErr := io.ReadAll(part.Body)
			if readErr != nil {
				continue
			}
			switch {
			case strings.HasPrefix(contentType, "text/plain"):
				if textBody == "" {
					textBody = string(body)
				}
			case strings.HasPrefix(contentType, "text/html"):
				if htmlBody == "" {
					htmlBody = string(body)
				}
			}

		case *mail.AttachmentHeader:
			hasAttachments = true
			_, _ = io.Copy(io.Discard, part.Body)
		}
	}

	if textBody == "" {
		textBody = htmlBody
	}
	return textBody, inReplyTo, hasAttachments
}
