package mail

import "strings"

const (
	DefaultDowntimeSubject = "Scheduled Downtime: Helium will be unavailable for 1 hour"
	DefaultUptimeSubject   = "Helium is Back Online"
	CreditsSubject         = "Credits Added to Your Account"
	ReminderSubject        = "Your Helium Invite Code"
)

const DefaultDowntimeText = `Scheduled Downtime: Helium will be unavailable for 1 hour

Greetings from Helium,

We wanted to let you know that Helium will be temporarily unavailable for 1 hour as we perform scheduled maintenance and upgrades.

During this window, you won't be able to access Helium. Once the maintenance is complete, you'll be able to log back in and experience the platform as usual.

We appreciate your patience and understanding as we work to make Helium even better for you.

Thanks,
The Helium Team`

const DefaultUptimeText = `Greetings from Helium,

We're pleased to inform you that Helium is now back online and fully operational after scheduled maintenance.

All systems are running smoothly, and you can now access all features and services as usual. We appreciate your patience during the brief maintenance window.

If you experience any issues, please don't hesitate to reach out to our support team.

Thanks,
The Helium Team`

const CreditsText = `Credits Added to Your Account

Greetings from Helium,

We're excited to inform you that credits have been added to your Helium account. These credits are now available for you to use across all platform features.

You can check your credit balance in your account dashboard at any time. If you have any questions about your credits or how to use them, please feel free to reach out to our support team.

Thank you for being a valued member of the Helium community.

Thanks,
The Helium Team`

var defaultDowntimeParagraphs = []string{
	"We wanted to let you know that Helium will be temporarily unavailable for 1 hour as we perform scheduled maintenance and upgrades.",
	"During this window, you won't be able to access Helium. Once the maintenance is complete, you'll be able to log back in and experience the platform as usual.",
	"We appreciate your patience and understanding as we work to make Helium even better for you.",
}

var defaultUptimeParagraphs = []string{
	"We're pleased to inform you that Helium is now back online and fully operational after scheduled maintenance.",
	"All systems are running smoothly, and you can now access all features and services as usual. We appreciate your patience during the brief maintenance window.",
	"If you experience any issues, please don't hesitate to reach out to our support team.",
}

// DowntimeContent builds the scheduled-maintenance announcement. Empty
// text falls back to the stock wording.
func DowntimeContent(text string) Content {
	if strings.TrimSpace(text) == "" {
		text = DefaultDowntimeText
	}
	return Content{
		Subject: DefaultDowntimeSubject,
		Text:    text,
		HTML:    DowntimeHTML(text),
	}
}

// UptimeContent builds the back-online announcement.
func UptimeContent(text string) Content {
	if strings.TrimSpace(text) == "" {
		text = DefaultUptimeText
	}
	return Content{
		Subject: DefaultUptimeSubject,
		Text:    text,
		HTML:    UptimeHTML(text),
	}
}

// CreditsContent builds the fixed credits-added notification.
func CreditsContent() Content {
	return Content{
		Subject: CreditsSubject,
		Text:    CreditsText,
		HTML:    CreditsHTML(),
	}
}

// ReminderContent builds the invite-code reminder sent to prospective
// users. signupURL already carries the code query parameter.
func ReminderContent(code, recipientName, signupURL string) Content {
	greeting := DefaultGreeting
	if strings.TrimSpace(recipientName) != "" {
		greeting = "Hello " + strings.TrimSpace(recipientName) + ","
	}
	text := greeting + `

You have been invited to join Helium. Use the invite code below when you sign up.

Your invite code is ` + code + `

Sign up here ` + signupURL + `

Thanks,
The Helium Team`
	return Content{
		Subject: ReminderSubject,
		Text:    text,
		HTML:    ReminderHTML(code, greeting, signupURL),
	}
}

const (
	logoImgTag         = `<img src="cid:email-logo" width="56" height="57" style="display:block;width:100%;height:auto;max-width:100%" alt="Helium Logo">`
	downtimeBodyImgTag = `<img src="cid:downtime-body" width="560" height="420" style="display:block;width:100%;height:auto;max-width:100%" alt="Downtime Notice">`
	uptimeBodyImgTag   = `<img src="cid:uptime-body" width="560" height="420" style="display:block;width:100%;height:auto;max-width:100%" alt="System Back Online">`
	creditsBodyImgTag  = `<img src="cid:credits-body" width="600" height="auto" style="display:block;width:100%;height:auto;max-width:100%;border-radius:8px" alt="Credits Added">`
)

const htmlDocHead = `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd">
<html>
<head>
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<meta http-equiv="Content-Type" content="text/html; charset=UTF-8">
<style>
@media (max-width: 450px) {
  .layout-0 { display: none !important; }
}
</style>
</head>
`

const noticeTail = `</table>
</td>
</tr>
</table>
</td>
</tr>
</table>
</body>
</html>`

// DowntimeHTML renders textContent into the downtime announcement
// shell. Paragraphs beyond the second collapse into one closing block.
func DowntimeHTML(textContent string) string {
	parsed := ParseText(textContent)
	if len(parsed.Paragraphs) == 0 {
		parsed.Paragraphs = defaultDowntimeParagraphs
	}

	mainText := paragraphAt(parsed.Paragraphs, 0)
	secondaryText := paragraphAt(parsed.Paragraphs, 1)
	closingText := ""
	if len(parsed.Paragraphs) > 2 {
		closingText = strings.Join(parsed.Paragraphs[2:], "<br>")
	}

	var b strings.Builder
	b.WriteString(htmlDocHead)
	b.WriteString(noticeTop(downtimeBodyImgTag))
	b.WriteString(spanRow(boldHeliumGreeting(parsed.Greeting)))
	b.WriteString(spacerRow("8"))
	b.WriteString(spanRow(mainText))
	b.WriteString(spacerRow("8"))
	b.WriteString(preWrapRow(secondaryText))
	if closingText != "" {
		b.WriteString(spacerRow("2"))
	}
	b.WriteString(preWrapRow(closingText))
	b.WriteString(spacerRow("8"))
	b.WriteString(preWrapRow(parsed.Signoff))
	b.WriteString(noticeTail)
	return b.String()
}

// UptimeHTML renders textContent into the back-online announcement
// shell.
func UptimeHTML(textContent string) string {
	parsed := ParseText(textContent)
	if len(parsed.Paragraphs) == 0 {
		parsed.Paragraphs = defaultUptimeParagraphs
	}

	var b strings.Builder
	b.WriteString(htmlDocHead)
	b.WriteString(noticeTop(uptimeBodyImgTag))
	b.WriteString(spanRow(boldHeliumGreeting(parsed.Greeting)))
	b.WriteString(spacerRow("8"))
	b.WriteString(spanRow(paragraphAt(parsed.Paragraphs, 0)))
	b.WriteString(spacerRow("8"))
	b.WriteString(preWrapRow(paragraphAt(parsed.Paragraphs, 1)))
	b.WriteString(spacerRow("8"))
	b.WriteString(preWrapRow(paragraphAt(parsed.Paragraphs, 2)))
	b.WriteString(spacerRow("8"))
	b.WriteString(preWrapRow(parsed.Signoff))
	b.WriteString(noticeTail)
	return b.String()
}

// CreditsHTML renders the fixed credits-added layout with the hero
// image and a call-to-action button.
func CreditsHTML() string {
	var b strings.Builder
	b.WriteString(htmlDocHead)
	b.WriteString(`<body style="width:100%;background-color:#ffffff;margin:0;padding:0">
<table width="100%" border="0" cellpadding="0" cellspacing="0" bgcolor="#ffffff">
<tr>
<td style="background-color:#ffffff;padding:20px 0">
<table align="center" width="100%" border="0" cellpadding="0" cellspacing="0" style="max-width:600px;margin:0 auto;background-color:#ffffff">
<tr>
<td style="padding:0">
<table align="center" width="100%" border="0" cellpadding="0" cellspacing="0">
<tr>
<td style="padding:0">
<table align="center" width="100%" border="0" cellpadding="0" cellspacing="0" style="color:#000;font-family:Arial, Helvetica, sans-serif">
`)
	b.WriteString(logoBlock())
	b.WriteString(spacerRow("24"))
	b.WriteString(`<tr>
<td style="padding:0">
<table cellpadding="0" cellspacing="0" border="0" style="width:100%">
<tr>
<td align="center" style="padding:0">
<table cellpadding="0" cellspacing="0" border="0" style="width:100%;max-width:600px">
<tr>
<td style="width:100%;padding:0">
`)
	b.WriteString(creditsBodyImgTag)
	b.WriteString(`
</td>
</tr>
</table>
</td>
</tr>
</table>
</td>
</tr>
`)
	b.WriteString(spacerRow("24"))
	b.WriteString(`<tr>
<td style="padding:0">
<table align="center" width="100%" border="0" cellpadding="0" cellspacing="0">
<tr>
<td align="center" style="padding:0">
<a href="http://he2.ai" target="_blank" rel="noopener noreferrer" style="display:inline-block;background-color:#4ade80;color:#ffffff;font-family:Arial, Helvetica, sans-serif;font-size:16px;font-weight:600;text-decoration:none;text-align:center;padding:14px 32px;border-radius:8px;line-height:1.2;letter-spacing:0.01em">Get Started</a>
</td>
</tr>
</table>
</td>
</tr>
`)
	b.WriteString(noticeTail)
	return b.String()
}

// ReminderHTML renders the invite reminder: logo, invite code callout
// and signup link, no hero image.
func ReminderHTML(code, greeting, signupURL string) string {
	var b strings.Builder
	b.WriteString(htmlDocHead)
	b.WriteString(`<body style="width:100%;background-color:#f0f1f5;margin:0;padding:0">
<table width="100%" border="0" cellpadding="0" cellspacing="0" bgcolor="#f0f1f5">
<tr>
<td style="background-color:#f0f1f5">
<table align="center" width="100%" border="0" cellpadding="0" cellspacing="0" style="max-width:600px;margin:0 auto;background-color:#ffffff">
<tr>
<td style="padding:10px 0px 0px 0px">
<table align="center" width="100%" border="0" cellpadding="0" cellspacing="0">
<tr>
<td style="padding:10px 0 10px 0">
<table align="center" width="100%" border="0" cellpadding="0" cellspacing="0" style="color:#000;font-family:Arial, Helvetica, sans-serif">
`)
	b.WriteString(logoBlock())
	b.WriteString(spacerRow("16"))
	b.WriteString(spanRow(boldHeliumGreeting(greeting)))
	b.WriteString(spacerRow("8"))
	b.WriteString(spanRow("You have been invited to join Helium. Use the invite code below when you sign up."))
	b.WriteString(spacerRow("16"))
	b.WriteString(`<tr>
<td align="center" style="padding:0px 20px">
<span style="display:inline-block;background-color:#f0f1f5;color:#111111;font-family:Consolas, Menlo, monospace;font-size:24px;font-weight:700;letter-spacing:0.12em;padding:14px 28px;border-radius:8px">` + code + `</span>
</td>
</tr>
`)
	b.WriteString(spacerRow("16"))
	b.WriteString(`<tr>
<td align="center" style="padding:0px 20px">
<a href="` + signupURL + `" target="_blank" rel="noopener noreferrer" style="display:inline-block;background-color:#4ade80;color:#ffffff;font-family:Arial, Helvetica, sans-serif;font-size:16px;font-weight:600;text-decoration:none;text-align:center;padding:14px 32px;border-radius:8px;line-height:1.2;letter-spacing:0.01em">Sign Up</a>
</td>
</tr>
`)
	b.WriteString(spacerRow("16"))
	b.WriteString(preWrapRow(DefaultSignoff))
	b.WriteString(noticeTail)
	return b.String()
}

// noticeTop is everything from <body> through the spacer after the
// hero image, shared by the downtime and uptime shells.
func noticeTop(bodyImgTag string) string {
	var b strings.Builder
	b.WriteString(`<body style="width:100%;background-color:#f0f1f5;margin:0;padding:0">
<table width="100%" border="0" cellpadding="0" cellspacing="0" bgcolor="#f0f1f5">
<tr>
<td style="background-color:#f0f1f5">
<table align="center" width="100%" border="0" cellpadding="0" cellspacing="0" style="max-width:600px;margin:0 auto;background-color:#ffffff">
<tr>
<td style="padding:10px 0px 0px 0px">
<table align="center" width="100%" border="0" cellpadding="0" cellspacing="0">
<tr>
<td style="padding:10px 0 10px 0">
<table align="center" width="100%" border="0" cellpadding="0" cellspacing="0" style="color:#000;font-family:Arial, Helvetica, sans-serif">
`)
	b.WriteString(logoBlock())
	b.WriteString(spacerRow("16"))
	b.WriteString(`<tr>
<td style="padding:0px 20px">
<table cellpadding="0" cellspacing="0" border="0" style="width:100%">
<tr>
<td align="center">
<table cellpadding="0" cellspacing="0" border="0" style="width:100%;max-width:560px">
<tr>
<td style="width:100%;padding:0">
`)
	b.WriteString(bodyImgTag)
	b.WriteString(`
</td>
</tr>
</table>
</td>
</tr>
</table>
</td>
</tr>
`)
	b.WriteString(spacerRow("8"))
	return b.String()
}

func logoBlock() string {
	return `<tr>
<td style="padding:0px 20px">
<table cellpadding="0" cellspacing="0" border="0" style="width:100%">
<tr>
<td align="center">
<table cellpadding="0" cellspacing="0" border="0" style="width:100%;max-width:56px">
<tr>
<td style="width:100%;padding:20 0">
` + logoImgTag + `
</td>
</tr>
</table>
</td>
</tr>
</table>
</td>
</tr>
`
}

func spacerRow(px string) string {
	return `<tr>
<td style="font-size:0;height:` + px + `px" height="` + px + `">&nbsp;</td>
</tr>
`
}

func spanRow(content string) string {
	return `<tr>
<td dir="ltr" style="color:#333333;font-size:18.6667px;line-height:1.84;text-align:left;padding:0px 20px">
<span style="white-space:pre-wrap">` + content + `</span><span style="white-space:pre-wrap"><br></span>
</td>
</tr>
`
}

func preWrapRow(content string) string {
	return `<tr>
<td dir="ltr" style="color:#333333;font-size:18.6667px;white-space:pre-wrap;line-height:1.84;text-align:left;padding:0px 20px">
` + content + `<br>
</td>
</tr>
`
}

func boldHeliumGreeting(greeting string) string {
	return strings.ReplaceAll(greeting, "Greetings from Helium,", `Greetings from <span style="font-weight:700">Helium</span>,`)
}

func paragraphAt(paragraphs []string, i int) string {
	if i < len(paragraphs) {
		return paragraphs[i]
	}
	return ""
}
