package processor

import (
	"math"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/mat"
)

// 词频平滑系数：weight = smooth + (1-smooth) * tf / maxTf
const lsaSmooth = 0.4

// tokenizeWords 取以字母开头的词（允许内部的 ' 和 -），统一小写
func tokenizeWords(sentence string) []string {
	fields := strings.FieldsFunc(sentence, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '-'
	})

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "'-")
		if f == "" {
			continue
		}
		if !isWord(f) {
			continue
		}
		out = append(out, strings.ToLower(f))
	}
	return out
}

func isWord(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && r != '\'' && r != '-' {
			return false
		}
	}
	return unicode.IsLetter([]rune(s)[0])
}

// lsaRank 对词-句矩阵做 SVD，句子得分为 sqrt(Σ σk² · v[j,k]²)；
// 文中无任何词或分解失败时返回 nil
func lsaRank(sentenceWords [][]string) []float64 {
	index := make(map[string]int)
	for _, words := range sentenceWords {
		for _, w := range words {
			if _, ok := index[w]; !ok {
				index[w] = len(index)
			}
		}
	}
	rows, cols := len(index), len(sentenceWords)
	if rows == 0 || cols == 0 {
		return nil
	}

	a := mat.NewDense(rows, cols, nil)
	for j, words := range sentenceWords {
		for _, w := range words {
			i := index[w]
			a.Set(i, j, a.At(i, j)+1)
		}
	}

	for j := 0; j < cols; j++ {
		maxTf := 0.0
		for i := 0; i < rows; i++ {
			maxTf = math.Max(maxTf, a.At(i, j))
		}
		if maxTf == 0 {
			continue
		}
		for i := 0; i < rows; i++ {
			a.Set(i, j, lsaSmooth+(1-lsaSmooth)*a.At(i, j)/maxTf)
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil
	}
	sigma := svd.Values(nil)
	var v mat.Dense
	svd.VTo(&v)

	ranks := make([]float64, cols)
	for j := 0; j < cols; j++ {
		var sum float64
		for k, s := range sigma {
			vk := v.At(j, k)
			sum += s * s * vk * vk
		}
		ranks[j] = math.Sqrt(sum)
	}
	return ranks
}
