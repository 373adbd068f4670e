package builtins

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/process"

	"cmdpipe/pkg/cmdpipe"
)

// RegisterPsinfo registers "psinfo": lists every visible process as
// "pid\tname\trss_bytes", one per line, ignoring processes that exit or
// become unreadable mid-scan (a normal race on any busy system).
func RegisterPsinfo() {
	cmdpipe.Register("psinfo", func(env *cmdpipe.Env) error {
		ctx := context.Background()
		procs, err := process.ProcessesWithContext(ctx)
		if err != nil {
			return err
		}
		for _, p := range procs {
			name, err := p.NameWithContext(ctx)
			if err != nil {
				continue
			}
			mem, err := p.MemoryInfoWithContext(ctx)
			if err != nil || mem == nil {
				continue
			}
			env.WriteString(fmt.Sprintf("%d\t%s\t%d\n", p.Pid, name, mem.RSS))
		}
		return nil
	})
}
