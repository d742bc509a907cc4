package mir

// PruneDeadBlocks removes blocks unreachable from the entry and renumbers
// the survivors deterministically, preserving structural order.
func PruneDeadBlocks(f *Func) {
	if f == nil || len(f.Blocks) == 0 {
		return
	}

	reachable := computeReachability(f)
	compactBlocks(f, reachable)
}

// computeReachability walks terminator edges from the entry block.
func computeReachability(f *Func) map[BlockID]bool {
	reachable := make(map[BlockID]bool, len(f.Blocks))
	work := []BlockID{f.Entry}

	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		if reachable[id] || id < 0 || int(id) >= len(f.Blocks) {
			continue
		}
		reachable[id] = true

		term := &f.Blocks[id].Term
		switch term.Kind {
		case TermGoto:
			work = append(work, term.Goto.Target)
		case TermBr:
			work = append(work, term.Br.Then, term.Br.Else)
		case TermSwitch:
			for _, c := range term.Switch.Cases {
				work = append(work, c.Target)
			}
			work = append(work, term.Switch.Default)
		}
	}
	return reachable
}

// compactBlocks drops dead blocks and rewrites every block reference.
func compactBlocks(f *Func, reachable map[BlockID]bool) {
	remap := make(map[BlockID]BlockID, len(f.Blocks))
	kept := f.Blocks[:0]
	for i := range f.Blocks {
		old := f.Blocks[i].ID
		if !reachable[old] {
			continue
		}
		newID := BlockID(len(kept))
		remap[old] = newID
		f.Blocks[i].ID = newID
		kept = append(kept, f.Blocks[i])
	}
	f.Blocks = kept
	f.Entry = remap[f.Entry]

	for i := range f.Blocks {
		term := &f.Blocks[i].Term
		switch term.Kind {
		case TermGoto:
			term.Goto.Target = remap[term.Goto.Target]
		case TermBr:
			term.Br.Then = remap[term.Br.Then]
			term.Br.Else = remap[term.Br.Else]
		case TermSwitch:
			for j := range term.Switch.Cases {
				term.Switch.Cases[j].Target = remap[term.Switch.Cases[j].Target]
			}
			term.Switch.Default = remap[term.Switch.Default]
		}
	}
}
