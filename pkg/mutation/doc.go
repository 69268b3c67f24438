/*
Package mutation implements the transactional core of lineedit: deleting
and replacing data lines while keeping the footer count honest.

	+------------+     +-----------+     +------------+
	| Validating | --> | BackingUp | --> | Rewriting  |
	| (footer,   |     | (audit,   |     | (temp file |
	|  ranges)   |     |  backup)  |     |  in place) |
	+-----+------+     +-----------+     +-----+------+
	      |                                    |
	      v                                    v
	  Aborted  <-------- any failure --- Committing --> Done
	 (dry-run)                          (rename)

🎯 Purpose:
- Delete resolved line numbers, emitting a recomputed footer
- Replace a column span on matched lines, footer untouched
- Report exactly what a dry run would change without touching disk

⚡ Guarantees:
- The header is never touched and the footer only ever changes to the
  recomputed count; neither can be deleted or replaced
- Every check runs before the first write; a failed check writes nothing
- The new content is built in a temp file beside the target and renamed
  over it only after it is complete; the temp file is removed on every
  other exit path, including context cancellation
- A dry run creates no backup, no temp file and no audit file

🔍 Example:

	eng, err := mutation.New(mutation.Options{Codec: codec, Store: store, Backups: backups, Audit: auditor})
	res, err := eng.Delete(ctx, "data.txt", []int{5}, mutation.RunOptions{})
	fmt.Println(res.NewFooter)
*/
package mutation
