// Package convert drives the external notebook conversion tool.
//
// Each [Job] pairs one document with one target format and maps to a
// single tool invocation:
//
//   - [FormatScript]: strip the notebook down to a runnable source script
//   - [FormatMarkdown]: execute every code cell and render the result,
//     including captured output and figures, as markdown
//
// Invocations are strictly sequential; the converter awaits one process
// before starting the next. A non-zero exit is surfaced as a
// [ConversionError] carrying the exit code and captured stderr.
package convert
