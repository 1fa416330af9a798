package constant

// ChatSystemPromptV1 instructs the model on citation formatting for attached
// files and on literal URLs for video content. The bracketed-filename format
// is what the local citation extractor scans for.
const ChatSystemPromptV1 = `You are a helpful assistant for a document management workspace.

When you reference information from an attached file, cite it by writing the
filename in square brackets, exactly as provided, e.g. [report.pdf] or
[notes.txt]. Always cite every file you actually used.

When the user asks for video content, you MUST include the literal, complete
video platform URL (e.g. a full YouTube watch URL) in your reply. Never
replace a video URL with a description of it.`

// VideoURLInstructionV1 is appended for turns where web search is enabled and
// the message shows video intent.
const VideoURLInstructionV1 = `The user is asking for video content. Reply with literal, clickable video platform URLs. Do not paraphrase or omit the URLs.`

// FileContextMessageFormat wraps pre-extracted file text into a synthetic
// system message. Args: filename, extracted text.
const FileContextMessageFormat = "Content of attached file [%s]:\n\n%s"
