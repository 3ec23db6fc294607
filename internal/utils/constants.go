package utils

// HTTP Header Constants
const (
	// Standard HTTP Headers
	HeaderContentType   = "Content-Type"
	HeaderContentLength = "Content-Length"
	HeaderCacheControl  = "Cache-Control"
	HeaderUserAgent     = "User-Agent"
	HeaderAccept        = "Accept"
	HeaderAllow         = "Allow"
	HeaderAuthorization = "Authorization"

	// Request/Response Tracking Headers
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"

	// Client IP Headers (priority order)
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderXRealIP       = "X-Real-IP"

	// Security Headers
	HeaderXContentTypeOptions = "X-Content-Type-Options"
	HeaderXFrameOptions       = "X-Frame-Options"

	// CORS Headers
	HeaderAccessControlAllowOrigin  = "Access-Control-Allow-Origin"
	HeaderAccessControlAllowMethods = "Access-Control-Allow-Methods"
	HeaderAccessControlAllowHeaders = "Access-Control-Allow-Headers"
	HeaderAccessControlMaxAge       = "Access-Control-Max-Age"
)

// Content Type Constants
const (
	ContentTypeJSON        = "application/json"
	ContentTypeJSONUTF8    = "application/json; charset=utf-8"
	ContentTypeFormEncoded = "application/x-www-form-urlencoded"
	ContentTypeAudioMPEG   = "audio/mpeg"
	ContentTypeXML         = "text/xml"
)

// Cache Control Values
const (
	CacheControlNoStore = "no-cache, no-store, must-revalidate"
)

// Security Header Values
const (
	XContentTypeOptionsNoSniff = "nosniff"
	XFrameOptionsDeny          = "DENY"
)

// CORS Values
const (
	CORSAllowOriginAll  = "*"
	CORSAllowMethodsStd = "POST, OPTIONS"
	CORSAllowHeadersStd = "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Request-ID, X-Correlation-ID"
	CORSMaxAgeOneDay    = "86400"
)

// Service Values
const (
	ServiceName = "syncscript-gateway"
)
