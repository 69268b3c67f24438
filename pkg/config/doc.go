/*
Package config manages configuration parsing and validation for lineedit.

	            +-------------+
	            |   Config    |
	            | (Dialects)  |
	            +------+------+
	                   |
	     +-------------+-------------+
	     |             |             |
	+----+----+   +----+----+   +----+----+
	|  YAML   |   |   HCL   |   |  JSON   |
	| Parser  |   | Parser  |   | Parser  |
	+---------+   +---------+   +---------+

🎯 Purpose:
- Describes the footer dialect (prefix, digit width, optional pattern)
- Names the backup suffix and where audit side-files go
- Selects per-file footer dialects with doublestar globs

🔄 Flow:
1. Starts from Default()
2. Overlays whatever the file sets, format chosen by extension
3. Validates, filling dialect gaps from the default footer
4. Hands the result to constructors by value; nothing mutates it afterwards

🔍 Example:

	cfg, err := config.LoadOrDefault(ctx, config.DefaultPath, false)
	footer := cfg.FooterFor("exports/2024.ctl")
*/
package config
