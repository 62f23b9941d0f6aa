package mail

import (
	"strings"
	"testing"
)

func TestDowntimeContent_Defaults(t *testing.T) {
	c := DowntimeContent("")

	if c.Subject != DefaultDowntimeSubject {
		t.Fatalf("unexpected subject: %q", c.Subject)
	}
	if c.Text != DefaultDowntimeText {
		t.Fatalf("expected default text content")
	}
	for _, want := range []string{
		"cid:email-logo",
		"cid:downtime-body",
		`Greetings from <span style="font-weight:700">Helium</span>,`,
		"We wanted to let you know",
		"Thanks,\nThe Helium Team",
	} {
		if !strings.Contains(c.HTML, want) {
			t.Fatalf("html missing %q", want)
		}
	}
}

func TestDowntimeContent_CustomTextFlowsIntoShell(t *testing.T) {
	text := "Planned Work: short outage\n\nHello,\n\nWe will briefly pause the service at midnight UTC.\n\nThanks,\nThe Helium Team"
	c := DowntimeContent(text)

	if c.Text != text {
		t.Fatalf("custom text should pass through unchanged")
	}
	if !strings.Contains(c.HTML, "We will briefly pause the service at midnight UTC.") {
		t.Fatalf("html missing custom paragraph")
	}
	if !strings.Contains(c.HTML, "Hello,") {
		t.Fatalf("html missing custom greeting")
	}
	if strings.Contains(c.HTML, `font-weight:700">Helium</span>`) {
		t.Fatalf("custom greeting should not be rewritten")
	}
}

func TestUptimeContent_Defaults(t *testing.T) {
	c := UptimeContent("")

	if c.Subject != DefaultUptimeSubject {
		t.Fatalf("unexpected subject: %q", c.Subject)
	}
	if !strings.Contains(c.HTML, "cid:uptime-body") {
		t.Fatalf("html missing uptime hero image")
	}
	if !strings.Contains(c.HTML, "back online and fully operational") {
		t.Fatalf("html missing default paragraph")
	}
}

func TestCreditsContent_FixedLayout(t *testing.T) {
	c := CreditsContent()

	if c.Subject != CreditsSubject {
		t.Fatalf("unexpected subject: %q", c.Subject)
	}
	if c.Text != CreditsText {
		t.Fatalf("expected stock credits text")
	}
	for _, want := range []string{"cid:email-logo", "cid:credits-body", "Get Started", "http://he2.ai"} {
		if !strings.Contains(c.HTML, want) {
			t.Fatalf("html missing %q", want)
		}
	}
}

func TestReminderContent_CarriesCodeAndLink(t *testing.T) {
	c := ReminderContent("NA7K2PQ", "Ada", "https://helium.he2.ai/signup?code=NA7K2PQ")

	if c.Subject != ReminderSubject {
		t.Fatalf("unexpected subject: %q", c.Subject)
	}
	if !strings.Contains(c.Text, "NA7K2PQ") {
		t.Fatalf("text missing invite code")
	}
	if !strings.Contains(c.Text, "Hello Ada,") {
		t.Fatalf("text missing personalized greeting")
	}
	for _, want := range []string{"NA7K2PQ", "https://helium.he2.ai/signup?code=NA7K2PQ", "cid:email-logo"} {
		if !strings.Contains(c.HTML, want) {
			t.Fatalf("html missing %q", want)
		}
	}
}

func TestReminderContent_DefaultGreetingWithoutName(t *testing.T) {
	c := ReminderContent("NA7K2PQ", "", "https://helium.he2.ai/signup?code=NA7K2PQ")

	if !strings.Contains(c.Text, DefaultGreeting) {
		t.Fatalf("expected default greeting, got %q", c.Text)
	}
}
