package prompt

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "fenced block",
			in:   "```js\nconst a = 1;\nconsole.log(a);\n```",
			want: "const a = 1;\nconsole.log(a);",
		},
		{
			name: "fence without language",
			in:   "```\nplain\n```\n",
			want: "plain",
		},
		{
			name: "inline fence",
			in:   "```js const a = 1```",
			want: "const a = 1",
		},
		{
			name: "preamble line",
			in:   "Here is the formatted email:\n\nDear John,\n\nThanks.",
			want: "Dear John,\n\nThanks.",
		},
		{
			name: "acknowledged preamble line",
			in:   "Sure! Here's the polished version:\n\nMeeting moved to Friday.",
			want: "Meeting moved to Friday.",
		},
		{
			name: "spanish preamble line",
			in:   "Aquí está la traducción:\nNos vemos mañana.",
			want: "Nos vemos mañana.",
		},
		{
			name: "dictated acknowledgement is kept",
			in:   "Okay, I'll send the file tomorrow.",
			want: "Okay, I'll send the file tomorrow.",
		},
		{
			name: "dictated sure is kept",
			in:   "Sure, let's meet at five.",
			want: "Sure, let's meet at five.",
		},
		{
			name: "dictated heading is kept",
			in:   "Here is the agenda for Monday:\n1. Budget\n2. Hiring",
			want: "Here is the agenda for Monday:\n1. Budget\n2. Hiring",
		},
		{
			name: "dictated greeting is kept",
			in:   "Hello, the report is ready.",
			want: "Hello, the report is ready.",
		},
		{
			name: "dictated content is kept",
			in:   "Certainly the budget needs review.",
			want: "Certainly the budget needs review.",
		},
		{
			name: "whitespace",
			in:   "  \n hello there \n",
			want: "hello there",
		},
		{
			name: "only an acknowledgement",
			in:   "Okay.",
			want: "Okay.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
