// Package memory provides a process-local short-term memory of run
// records: routing decisions, stage outcomes and other observations a host
// wants later workers to recall. Records are append-only, deduplicated by
// id and retrievable by recency or by the action that caused them.
package memory
