// Package formula compiles and evaluates the small arithmetic expressions
// used by the leveling configuration (for example "level * 100").
//
// Expressions are restricted to numeric literals, the variables level and
// experience, the operators + - * / with parentheses, and the functions
// min and max. Anything else is rejected at compile time, so configuration
// can never reach a general purpose evaluator.
package formula
