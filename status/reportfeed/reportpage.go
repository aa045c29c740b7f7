package reportfeed

// reportFormat defines the HTML structure of the report.
const reportFormat = `
<h3>Summary</h3>
<span id='summarytimestamp'>%s</span>
<pre>
<code>
<div class="preformatted" id='summary'>
%s
</div>
</code>
</pre>
<h3>Recent Events</h3>
<pre>
<code>
<div class="preformatted" id='events'>
%s
</div>
</code>
</pre>
`
