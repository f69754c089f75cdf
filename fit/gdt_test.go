/*
 * gdt_test.go, part of gofit.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package fit

import (
	"testing"
)

func TestGDTTSIdentical(t *testing.T) {
	a := helix(25)
	b := rotZ(a, 0.8, -4, 6, 1)
	score, fractions, err := GDTTS(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if score != 1.0 {
		t.Errorf("rigid copies should score 1.0, got %.4f", score)
	}
	for k, f := range fractions {
		if f != 1.0 {
			t.Errorf("cutoff %.0f: fraction %.4f, want 1.0", GDTCutoffs[k], f)
		}
	}
}

func TestGDTTSPartial(t *testing.T) {
	//one atom out of 20 pushed far away: the refit loop should recover
	//the other 19 under every cutoff
	a := helix(20)
	b := rotZ(a, 0.3, 2, 2, 2)
	b.Set(7, 2, b.At(7, 2)+50)
	score, fractions, err := GDTTS(a, b)
	if err != nil {
		t.Fatal(err)
	}
	for k, f := range fractions {
		if f < 0.95 || f > 1.0 {
			t.Errorf("cutoff %.0f: fraction %.4f, want 19/20", GDTCutoffs[k], f)
		}
	}
	if score < 0.95 || score > 1.0 {
		t.Errorf("score %.4f, want about 0.95", score)
	}
}

func TestGDTTSErrors(t *testing.T) {
	if _, _, err := GDTTS(helix(10), helix(11)); err == nil {
		t.Error("mismatched sizes should fail")
	}
}
