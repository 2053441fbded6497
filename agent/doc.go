// Package agent defines the capability contract between the workflow
// engine and the language-model backends that do the actual research work.
//
// A Capability is an opaque callable unit: given a role specification and a
// task, it produces a structured Output or fails. The engine never sees
// prompts, tool calls, or provider details; it observes only the final
// structured output. Role polymorphism is expressed through RoleSpec values,
// not through per-role types - a researcher and a critic share the same
// invocation shape and differ only in configuration.
//
// Implementations live in pkg/provider (OpenAI-compatible, Anthropic) and
// are bound to roles by the subagent factory.
package agent
