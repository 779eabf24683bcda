// Package driving defines the interfaces that the CLI, TUI and MCP
// adapters call INTO core.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driving
