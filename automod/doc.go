// Declarative content moderation engine for community submissions.
//
// This package (`github.com/theimperious1/OCRAutoModerator/automod`) re-exports the main types of the rules engine. Each community keeps a YAML rule document; documents are parsed (`automod/ruledoc`), validated in to a priority-ordered rule set (`automod/rules`), and published as an immutable snapshot (`automod/snapshot`). Text recognized in a submission's media is matched against the rules (`automod/engine`), the matches are bucketed by action, and a single decision (remove, spam, approve, report, or nothing) is resolved and rendered, including any removal comment or report reason (`automod/placeholder`).
//
// See `cmd/ocrmod` for a daemon built on this package.
package automod
