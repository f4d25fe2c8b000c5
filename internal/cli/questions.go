package cli

import "brainup-client/internal/domain"

// demoQuestions is the built-in bank used by `play --demo`; swap the server
// stream in for real sessions.
func demoQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:            1,
			Prompt:        "Which keyword is used to define a class in Java?",
			Alternatives:  []string{"class", "struct", "define", "object"},
			CorrectAnswer: 0,
		},
		{
			ID:            2,
			Prompt:        "Which data type stores whole numbers?",
			Alternatives:  []string{"double", "int", "String", "boolean"},
			CorrectAnswer: 1,
		},
		{
			ID:            3,
			Prompt:        "How do you declare a static method?",
			Alternatives:  []string{"void static method()", "static void method()", "method static void()", "void method static()"},
			CorrectAnswer: 1,
		},
		{
			ID:            4,
			Prompt:        "What is the assignment operator in Java?",
			Alternatives:  []string{":=", "==", "=", "<-"},
			CorrectAnswer: 2,
		},
		{
			ID:            5,
			Prompt:        "Which control structure repeats a block while a condition holds?",
			Alternatives:  []string{"if", "switch", "break", "while"},
			CorrectAnswer: 3,
		},
	}
}

// demoFeed returns a closure handing out demo questions in order.
func demoFeed() func() (domain.Question, bool) {
	bank := demoQuestions()
	next := 0
	return func() (domain.Question, bool) {
		if next >= len(bank) {
			return domain.Question{}, false
		}
		q := bank[next]
		next++
		return q, true
	}
}
