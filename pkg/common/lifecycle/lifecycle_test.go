// Copyright (c) 2024 Searchstack, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLifeCycleStartStop(t *testing.T) {
	lc := NewLifeCycle()

	assert.True(t, lc.Start())
	assert.False(t, lc.Start())

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer lc.StopComplete()
		<-lc.StopCh()
	}()

	assert.True(t, lc.Stop())
	assert.False(t, lc.Stop())
	lc.Wait()
	<-done
}

func TestLifeCycleRestart(t *testing.T) {
	lc := NewLifeCycle()

	for i := 0; i < 3; i++ {
		assert.True(t, lc.Start())
		go func() {
			defer lc.StopComplete()
			<-lc.StopCh()
		}()
		assert.True(t, lc.Stop())
		lc.Wait()
	}
}

func TestStopChAfterStopIsClosed(t *testing.T) {
	lc := NewLifeCycle()
	lc.Start()
	lc.Stop()

	select {
	case <-lc.StopCh():
	default:
		t.Fatal("expected closed stop channel")
	}
}
