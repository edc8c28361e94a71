package kopilock

import "testing"

func TestNoopObserver_SatisfiesInterface(t *testing.T) {
	var o WaitObserver = NoopObserver{}
	o.OnWaitStart(CacheWriterScope(), Budget{})
	o.OnRetry(CacheWriterScope(), 0, 0, true)
	o.OnAcquired(CacheWriterScope(), 0, BackendAdvisory)
	o.OnTimeout(CacheWriterScope(), 0)
	o.OnCancelled(CacheWriterScope(), 0)
}
