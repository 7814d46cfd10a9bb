package configsync

import (
	"fmt"
)

// Name of the wiki page holding each community's rule document.
const WikiPage = "ocr_auto_moderator"

// Rule document written for communities which do not have one yet, and on reset.
const DefaultDocument = `# Every rule needs type, rule, action, action_reason and priority.
# type: image, video, gif or any.
# rule: list of words or phrases to look for, e.g. ["example one", "example two"].
# action: remove, spam, approve, report or nothing.
# action_reason: left as the mod note on removals. Up to 99 characters.
# priority: 1 to 2000, unique per rule. Lower numbers are more important.
# Removals win over approvals, and approvals win over reports.
# Matching ignores case. Backslashes inside double quotes must be doubled.
---
# Priority 1 is the most important rule.
type: image
rule: ["OCR AUTOMODERATOR EXAMPLE PHRASE ONE"]
action: remove
action_reason: "Example reason 1"
comment: |
    Hi {{author}}, thanks for your submission to /r/{{subreddit}}!
    Unfortunately it appears to break our rules, so it has been removed.

    If you think this was a mistake, [contact the moderators](https://www.reddit.com/message/compose?to=/r/{{subreddit}}).
priority: 1
---
# Only applies to videos. If this and the rule above both match, the rule above wins.
type: video
rule: ["OCR AUTOMODERATOR EXAMPLE PHRASE ONE", "OCR AUTOMODERATOR EXAMPLE PHRASE TWO"]
action: remove
action_reason: "Example reason 2"
priority: 2
---
# Applies to images, videos and gifs, and reports instead of removing.
type: any
rule: ["OCR AUTOMODERATOR EXAMPLE PHRASE ONE"]
action: report
action_reason: "Example reason 3"
priority: 3
---
# Only applies to gifs.
type: gif
rule: ["OCR AUTOMODERATOR EXAMPLE PHRASE ONE"]
action: report
action_reason: "Example reason 4"
priority: 4
---
# "nothing" rules are recorded for auditing but never act on a submission.
type: any
rule: ["OCR AUTOMODERATOR EXAMPLE PHRASE ONE"]
action: nothing
action_reason: "Example reason 5"
priority: 5
---
# Rules can read text in other languages. Use the language code, not the name ("ar", not "arabic").
# Supported codes:
# https://tesseract-ocr.github.io/tessdoc/Data-Files-in-different-versions.html
# https://www.jaided.ai/easyocr/
#
# type: any
# rule: ["OCR AUTOMODERATOR EXAMPLE PHRASE ONE"]
# action: nothing
# action_reason: "Example reason 6"
# language: ar
# priority: 6
`

// Modmail sent after the bot joins a community.
func JoinSuccessMessage(botName, community string) (subject, body string) {
	subject = fmt.Sprintf("%s has been set up!", botName)
	body = fmt.Sprintf(`Hi! I've joined /r/%[2]s and loaded a starter configuration.  
  
https://www.reddit.com/r/%[2]s/wiki/edit/%[3]s  
  
Edit the rules there, then message me as shown below to apply your changes.  
  
https://www.reddit.com/message/compose/?to=%[1]s&subject=update&message=%[2]s
`, botName, community, WikiPage)
	return subject, body
}

// Modmail sent when the bot could not read or write the rule document.
func PermissionErrorMessage(botName, community string) (subject, body string) {
	subject = fmt.Sprintf("Permissions issue with %s", botName)
	body = fmt.Sprintf(`I couldn't set up my configuration page in /r/%[2]s.  
Please give me the "Manage Posts & Comments" and "Manage Wiki Pages" permissions, then message me as shown below.  
  
https://www.reddit.com/message/compose/?to=%[1]s&subject=reset&message=%[2]s
`, botName, community)
	return subject, body
}
