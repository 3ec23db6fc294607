// Package docs provides the Swagger documentation for the API.
package docs

// @title           SyncScript Gateway
// @version         1.0.0
// @description     An authenticated proxy gateway for SyncScript's AI, speech synthesis, and scheduled-job upstreams. Normalizes upstream responses and failure modes behind a single JSON surface.
// @termsOfService  https://github.com/stringerc/syncscript-gateway/blob/main/LICENSE

// @contact.name   API Support
// @contact.url    https://github.com/stringerc/syncscript-gateway

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session access token.
