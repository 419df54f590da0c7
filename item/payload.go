package item

// Resource describes a navigable resource: a file, directory or image the
// client can request by echoing the selector back to the server.
//
// The selector is opaque and may be empty. It must not contain a tab or a
// line terminator; that is enforced by the codec, not by the constructor.
type Resource struct {
	selector string
}

// NewResource creates a Resource with the given selector.
func NewResource(selector string) Resource {
	return Resource{selector: selector}
}

// Selector returns the selector string.
func (r Resource) Selector() string { return r.selector }

// Message is display-only text (info lines and error markers).
type Message struct {
	text string
}

// NewMessage creates a Message with the given text.
func NewMessage(text string) Message {
	return Message{text: text}
}

// Text returns the message text.
func (m Message) Text() string { return m.text }

// TelnetLink points at a remote login session.
// The host is never resolved or validated by this package.
type TelnetLink struct {
	host      string
	port      uint16
	loginName string
}

// NewTelnetLink creates a TelnetLink.
func NewTelnetLink(host string, port uint16, loginName string) TelnetLink {
	return TelnetLink{host: host, port: port, loginName: loginName}
}

// TelnetLinkFromInt creates a TelnetLink from an untyped integer port, as
// found in config files and interchange frames. Ports outside 0-65535 are
// rejected with an InvalidField error.
func TelnetLinkFromInt(host string, port int, loginName string) (TelnetLink, error) {
	if port < 0 || port > maxPort {
		return TelnetLink{}, invalidField("port", "telnet port %d out of range 0-%d", port, maxPort)
	}
	return NewTelnetLink(host, uint16(port), loginName), nil
}

// Host returns the hostname or literal IP address.
func (t TelnetLink) Host() string { return t.host }

// Port returns the TCP port.
func (t TelnetLink) Port() uint16 { return t.port }

// LoginName returns the login name the client should use. May be empty.
func (t TelnetLink) LoginName() string { return t.loginName }
