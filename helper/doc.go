// Package helper runs the Azure Artifacts Credential Provider as a child
// process and decodes the credential it prints.
//
// The helper is invoked with a fixed flag contract (see Request.Args). Its
// stderr is forwarded line by line to the caller while it runs, because it may
// print device-flow login instructions that a person has to act on before the
// process can exit. Its stdout must be a single UTF-8 JSON object carrying
// Username and Password.
//
// Locator finds the helper on disk using the same per-platform layout the
// NuGet plugin installer produces.
package helper
