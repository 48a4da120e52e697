package rule

// Collector is a Sink that accumulates records in memory; used by tests and
// by any caller that wants the full rule set rather than a streamed output
// file.
type Collector struct {
	Records []Record
}

func (c *Collector) Emit(r Record) error {
	c.Records = append(c.Records, r)
	return nil
}
