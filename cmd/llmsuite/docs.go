package main

// General API documentation for swaggo. Run swag against this package to
// regenerate docs.
//
// @title           llmsuite API
// @version         1.0
// @description     HTTP API for comparing local Ollama models side by side.
//
// @contact.name   llmsuite maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
