package headers

// Names of the headers the message envelopes and attribute resolvers look at.
const (
	Host             = "Host"
	ContentType      = "Content-Type"
	ContentLength    = "Content-Length"
	Referer          = "Referer"
	XForwardedFor    = "X-Forwarded-For"
	Forwarded        = "Forwarded"
	ClientIP         = "Client-Ip"
	XRequestedWith   = "X-Requested-With"
	SetCookie        = "Set-Cookie"
	TransferEncoding = "Transfer-Encoding"
)
