package problems

import "github.com/typedrill/typedrill-backend/internal/domain"

// catalog holds the built-in practice problems, keyed by normalized language
// name. Typing practice material, so question and answer are the same text.
var catalog = map[string][]domain.Problem{
	"html": {
		{Question: "<!DOCTYPE html>", Answer: "<!DOCTYPE html>", Difficulty: domain.ProblemLevelBeginner, Category: "doctype"},
		{Question: "<html lang='ja'>", Answer: "<html lang='ja'>", Difficulty: domain.ProblemLevelBeginner, Category: "attributes"},
		{Question: "<meta charset='UTF-8'>", Answer: "<meta charset='UTF-8'>", Difficulty: domain.ProblemLevelBeginner, Category: "meta"},
	},
	"css": {
		{Question: "* { box-sizing: border-box; }", Answer: "* { box-sizing: border-box; }", Difficulty: domain.ProblemLevelIntermediate, Category: "universal"},
		{Question: ".container { max-width: 1200px; margin: 0 auto; }", Answer: ".container { max-width: 1200px; margin: 0 auto; }", Difficulty: domain.ProblemLevelBeginner, Category: "layout"},
	},
	"javascript": {
		{Question: "const arr = [1, 2, 3, 4, 5];", Answer: "const arr = [1, 2, 3, 4, 5];", Difficulty: domain.ProblemLevelBeginner, Category: "arrays"},
		{Question: "arr.map(x => x * 2)", Answer: "arr.map(x => x * 2)", Difficulty: domain.ProblemLevelIntermediate, Category: "methods"},
		{Question: "function calculateSum(a, b) { return a + b; }", Answer: "function calculateSum(a, b) { return a + b; }", Difficulty: domain.ProblemLevelBeginner, Category: "functions"},
	},
	"php": {
		{Question: "<?php echo 'Hello World'; ?>", Answer: "<?php echo 'Hello World'; ?>", Difficulty: domain.ProblemLevelBeginner, Category: "basics"},
	},
	"java": {
		{Question: "public class Main { public static void main(String[] args) {", Answer: "public class Main { public static void main(String[] args) {", Difficulty: domain.ProblemLevelBeginner, Category: "class"},
	},
	"python3": {
		{Question: "def calculate_sum(a, b): return a + b", Answer: "def calculate_sum(a, b): return a + b", Difficulty: domain.ProblemLevelBeginner, Category: "functions"},
	},
	"sql": {
		{Question: "SELECT * FROM users WHERE age > 18;", Answer: "SELECT * FROM users WHERE age > 18;", Difficulty: domain.ProblemLevelBeginner, Category: "queries"},
		{Question: "CREATE TABLE users (id INT PRIMARY KEY, name VARCHAR(100));", Answer: "CREATE TABLE users (id INT PRIMARY KEY, name VARCHAR(100));", Difficulty: domain.ProblemLevelIntermediate, Category: "ddl"},
	},
	"linux (red hat)": {
		{Question: "sudo yum install nginx", Answer: "sudo yum install nginx", Difficulty: domain.ProblemLevelBeginner, Category: "package"},
	},
	"linux(debian)": {
		{Question: "sudo apt-get update && sudo apt-get install nginx", Answer: "sudo apt-get update && sudo apt-get install nginx", Difficulty: domain.ProblemLevelBeginner, Category: "package"},
	},
	"git": {
		{Question: "git add . && git commit -m 'Initial commit'", Answer: "git add . && git commit -m 'Initial commit'", Difficulty: domain.ProblemLevelBeginner, Category: "basics"},
	},
}

// catalogLoader looks a normalized language up in the built-in catalog.
func catalogLoader(language string) []domain.Problem {
	problems, ok := catalog[language]
	if !ok {
		return []domain.Problem{}
	}
	// Copy so callers cannot mutate the catalog through the cache.
	out := make([]domain.Problem, len(problems))
	copy(out, problems)
	return out
}
