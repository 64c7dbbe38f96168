// Package classifier provides the default intent category set.
package classifier

// defaultCategories returns the built-in categories in registration order.
// Order matters: the first category wins score ties.
func defaultCategories() []Category {
	return []Category{
		{
			Name: "development",
			Patterns: []string{
				"git", "code", "build", "compile", "deploy", "commit",
				"branch", "repository", "repo", "test", "debug", "bug",
			},
			Boost:          1.2,
			PreferredTools: []string{"git_status", "file_read"},
			ContextHints:   []string{"project_path"},
		},
		{
			Name: "memory",
			Patterns: []string{
				"remember", "recall", "memory", "store", "forget",
				"note", "save this", "what did i",
			},
			Boost:          1.15,
			PreferredTools: []string{"memory_search", "memory_store"},
			ContextHints:   []string{"memory_category"},
		},
		{
			Name: "analysis",
			Patterns: []string{
				"analyze", "analysis", "detect", "bullshit", "evaluate",
				"assess", "score", "pattern",
			},
			Boost:          1.1,
			PreferredTools: []string{"detect_bullshit"},
			ContextHints:   []string{"analysis_target"},
		},
		{
			Name: "protocol",
			Patterns: []string{
				"protocol", "workflow", "routine", "briefing", "checkup",
				"run the", "start the",
			},
			Boost:          1.25,
			PreferredTools: []string{"protocol_list", "protocol_start"},
			ContextHints:   []string{"protocol_id"},
		},
		{
			Name: "system",
			Patterns: []string{
				"status", "health", "uptime", "stats", "how are you",
				"diagnostic", "self-test", "self test",
			},
			Boost:          1.1,
			PreferredTools: []string{"system_status"},
			ContextHints:   nil,
		},
		{
			Name: "file",
			Patterns: []string{
				"file", "read", "open", "directory", "folder", "list files",
			},
			Boost:          1.0,
			PreferredTools: []string{"file_read", "file_list"},
			ContextHints:   []string{"path"},
		},
		{
			Name: "research",
			Patterns: []string{
				"search the web", "look up", "fetch", "url", "http", "website",
			},
			Boost:          1.0,
			PreferredTools: []string{"web_fetch"},
			ContextHints:   []string{"url"},
		},
		{
			Name: "conversation",
			Patterns: []string{
				"hello", "hey", "thanks", "thank you", "chat", "tell me",
			},
			Boost:          0.8,
			PreferredTools: []string{"ask_model"},
			ContextHints:   nil,
		},
	}
}
