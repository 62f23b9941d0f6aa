package mail

import "testing"

func TestParseText_DefaultDowntimeText(t *testing.T) {
	parsed := ParseText(DefaultDowntimeText)

	if parsed.Greeting != "Greetings from Helium," {
		t.Fatalf("unexpected greeting: %q", parsed.Greeting)
	}
	if len(parsed.Paragraphs) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d: %#v", len(parsed.Paragraphs), parsed.Paragraphs)
	}
	if parsed.Paragraphs[0] != "We wanted to let you know that Helium will be temporarily unavailable for 1 hour as we perform scheduled maintenance and upgrades." {
		t.Fatalf("unexpected first paragraph: %q", parsed.Paragraphs[0])
	}
	if parsed.Signoff != "Thanks,\nThe Helium Team" {
		t.Fatalf("unexpected signoff: %q", parsed.Signoff)
	}
}

func TestParseText_EmptyTextFallsBackToDefaults(t *testing.T) {
	parsed := ParseText("   \n  ")

	if parsed.Greeting != DefaultGreeting {
		t.Fatalf("expected default greeting, got %q", parsed.Greeting)
	}
	if len(parsed.Paragraphs) != 0 {
		t.Fatalf("expected no paragraphs, got %#v", parsed.Paragraphs)
	}
	if parsed.Signoff != DefaultSignoff {
		t.Fatalf("expected default signoff, got %q", parsed.Signoff)
	}
}

func TestParseText_StripsTitleLine(t *testing.T) {
	text := "Maintenance Notice: window moved\n\nHello everyone,\n\nThe window moved to Friday evening this week.\n\nThanks,\nThe Helium Team"
	parsed := ParseText(text)

	if parsed.Greeting != "Hello everyone," {
		t.Fatalf("unexpected greeting: %q", parsed.Greeting)
	}
	if len(parsed.Paragraphs) != 1 || parsed.Paragraphs[0] != "The window moved to Friday evening this week." {
		t.Fatalf("unexpected paragraphs: %#v", parsed.Paragraphs)
	}
}

func TestParseText_MergesSignoffWithTeamParagraph(t *testing.T) {
	text := "Hi,\n\nAll clear now.\n\nThanks,\n\nHelium Team"
	parsed := ParseText(text)

	if parsed.Signoff != "Thanks,<br>Helium Team" {
		t.Fatalf("unexpected signoff: %q", parsed.Signoff)
	}
	if len(parsed.Paragraphs) != 1 || parsed.Paragraphs[0] != "All clear now." {
		t.Fatalf("unexpected paragraphs: %#v", parsed.Paragraphs)
	}
}

func TestParseText_MergesSignoffWithTheHeliumTeamParagraph(t *testing.T) {
	text := "Hello,\n\nBody paragraph here.\n\nThanks,\n\nThe Helium Team"
	parsed := ParseText(text)

	if parsed.Signoff != "Thanks,<br>The Helium Team" {
		t.Fatalf("unexpected signoff: %q", parsed.Signoff)
	}
	if len(parsed.Paragraphs) != 1 || parsed.Paragraphs[0] != "Body paragraph here." {
		t.Fatalf("unexpected paragraphs: %#v", parsed.Paragraphs)
	}
}

func TestParseText_SplitsInlineTeamSignoff(t *testing.T) {
	text := "Hi,\n\nMaintenance is complete.\n\nThanks from the Helium Team"
	parsed := ParseText(text)

	if parsed.Signoff != "Thanks from<br>the Helium Team" {
		t.Fatalf("unexpected signoff: %q", parsed.Signoff)
	}
}

func TestParseText_ShortOpenerAndNameBecomeGreetingAndSignoff(t *testing.T) {
	text := "Team update\n\nAll systems nominal today with no incidents reported.\n\nMaya,"
	parsed := ParseText(text)

	if parsed.Greeting != "Team update" {
		t.Fatalf("unexpected greeting: %q", parsed.Greeting)
	}
	if parsed.Signoff != "Maya," {
		t.Fatalf("unexpected signoff: %q", parsed.Signoff)
	}
	if len(parsed.Paragraphs) != 1 {
		t.Fatalf("unexpected paragraphs: %#v", parsed.Paragraphs)
	}
}

func TestParseText_SentencePunctuationKeepsOpenerAsParagraph(t *testing.T) {
	text := "It works. Ship it today.\n\nThanks,\nThe Helium Team"
	parsed := ParseText(text)

	if parsed.Greeting != DefaultGreeting {
		t.Fatalf("expected default greeting, got %q", parsed.Greeting)
	}
	if len(parsed.Paragraphs) != 1 || parsed.Paragraphs[0] != "It works. Ship it today." {
		t.Fatalf("unexpected paragraphs: %#v", parsed.Paragraphs)
	}
}

func TestParseText_NormalizesGreetingsFromPrefix(t *testing.T) {
	text := "greetings from helium,\n\nThe maintenance completed successfully without any issues.\n\nThanks,\nThe Helium Team"
	parsed := ParseText(text)

	if parsed.Greeting != "Greetings from helium," {
		t.Fatalf("unexpected greeting: %q", parsed.Greeting)
	}
}
